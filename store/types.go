package store

import "errors"

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	// KindUnset is the zero value, read from array slots never written.
	KindUnset Kind = iota
	KindNull
	KindString
	KindBool
	KindFloat
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

var (
	ErrMissingKey       = errors.New("store: missing key")
	ErrIndexOutOfBounds = errors.New("store: index out of bounds")
	ErrInvalidType      = errors.New("store: invalid type")
	ErrInvalidHandle    = errors.New("store: invalid handle")
	ErrForeignHandle    = errors.New("store: handle belongs to a different store")
	ErrTooLarge         = errors.New("store: length exceeds the reference width")
)
