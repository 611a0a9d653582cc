package store

import (
	"fmt"

	"github.com/forestrie/go-jsonarena/arena"
)

// Value is a JSON value read from, or about to be written to, a Store.
//
// Scalars are carried by value. Object and Array values carry a handle into
// the store that holds them.
type Value struct {
	kind Kind
	s    string
	b    bool
	f    float32
	st   *Store
	ref  arena.Ref
}

func NullValue() Value            { return Value{kind: KindNull} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func FloatValue(f float32) Value  { return Value{kind: KindFloat, f: f} }
func ObjectValue(o Object) Value  { return Value{kind: KindObject, st: o.st, ref: o.ref} }
func ArrayValue(a Array) Value    { return Value{kind: KindArray, st: a.st, ref: a.ref} }
func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsUnset() bool     { return v.kind == KindUnset }
func (v Value) isContainer() bool { return v.kind == KindObject || v.kind == KindArray }

func (v Value) Str() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.s, nil
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.b, nil
}

func (v Value) Float() (float32, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return v.f, nil
}

func (v Value) Object() (Object, error) {
	if v.kind != KindObject {
		return Object{}, v.mismatch(KindObject)
	}
	return Object{st: v.st, ref: v.ref}, nil
}

func (v Value) Array() (Array, error) {
	if v.kind != KindArray {
		return Array{}, v.mismatch(KindArray)
	}
	return Array{st: v.st, ref: v.ref}, nil
}

func (v Value) mismatch(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrInvalidType, want, v.kind)
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindObject, KindArray:
		return fmt.Sprintf("%s@%d", v.kind, v.ref)
	default:
		return v.kind.String()
	}
}
