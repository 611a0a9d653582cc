package store

import (
	"fmt"

	"github.com/forestrie/go-jsonarena/arena"
)

// Array is a handle to a fixed length run of values.
type Array struct {
	st  *Store
	ref arena.Ref
}

// Ref returns the offset of the array record.
func (a Array) Ref() arena.Ref { return a.ref }

// Store returns the store that holds the array.
func (a Array) Store() *Store { return a.st }

func (a Array) check() (*Store, error) {
	if a.st == nil {
		return nil, ErrInvalidHandle
	}
	return a.st, a.st.own(a.st, a.ref)
}

// Len returns the number of slots. An invalid handle has no slots.
func (a Array) Len() int {
	s, err := a.check()
	if err != nil {
		return 0
	}
	return int(s.arrayLen(a.ref))
}

func (a Array) slot(s *Store, i int) (arena.Ref, error) {
	n := s.arrayLen(a.ref)
	if i < 0 || uint64(i) >= uint64(n) {
		return arena.NoRef, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, i, n)
	}
	return s.elementRef(a.ref, uint32(i)), nil
}

// Get returns the value in slot i. Slots never written read as Unset.
func (a Array) Get(i int) (Value, error) {
	s, err := a.check()
	if err != nil {
		return Value{}, err
	}
	ref, err := a.slot(s, i)
	if err != nil {
		return Value{}, err
	}
	return s.valueAt(ref), nil
}

// Set stores v in slot i, releasing the previous value.
func (a Array) Set(i int, v Value) error {
	s, err := a.check()
	if err != nil {
		return err
	}
	if _, err = a.slot(s, i); err != nil {
		return err
	}
	p, err := s.prepare(v)
	if err != nil {
		return err
	}
	// prepare may have grown the block, so resolve the slot again.
	ref, _ := a.slot(s, i)
	s.overwrite(ref, v, p)
	return nil
}

func (a Array) SetNull(i int) error             { return a.Set(i, NullValue()) }
func (a Array) SetString(i int, s string) error { return a.Set(i, StringValue(s)) }
func (a Array) SetBool(i int, b bool) error     { return a.Set(i, BoolValue(b)) }
func (a Array) SetFloat(i int, f float32) error { return a.Set(i, FloatValue(f)) }
func (a Array) SetObject(i int, o Object) error { return a.Set(i, ObjectValue(o)) }
func (a Array) SetArray(i int, c Array) error   { return a.Set(i, ArrayValue(c)) }

func (a Array) GetString(i int) (string, error) {
	v, err := a.Get(i)
	if err != nil {
		return "", err
	}
	return v.Str()
}

func (a Array) GetBool(i int) (bool, error) {
	v, err := a.Get(i)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func (a Array) GetFloat(i int) (float32, error) {
	v, err := a.Get(i)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (a Array) GetObject(i int) (Object, error) {
	v, err := a.Get(i)
	if err != nil {
		return Object{}, err
	}
	return v.Object()
}

func (a Array) GetArray(i int) (Array, error) {
	v, err := a.Get(i)
	if err != nil {
		return Array{}, err
	}
	return v.Array()
}

// Valid reports whether a refers to an array in some store.
func (a Array) Valid() bool { return a.st != nil && a.ref != arena.NoRef }
