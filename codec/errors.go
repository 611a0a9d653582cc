package codec

import (
	"errors"
	"fmt"
)

var (
	ErrStackOverflow      = errors.New("codec: stack capacity exceeded")
	ErrKeyTooLong         = errors.New("codec: key exceeds the key buffer")
	ErrUnsupportedFloat   = errors.New("codec: NaN and infinite floats have no JSON form")
	ErrUnexpectedChar     = errors.New("codec: unexpected character")
	ErrUnexpectedEOF      = errors.New("codec: unexpected end of input")
	ErrUnterminatedString = errors.New("codec: unterminated string")
	ErrInvalidEscape      = errors.New("codec: invalid escape sequence")
	ErrMalformedNumber    = errors.New("codec: malformed number")
	ErrScratchOverflow    = errors.New("codec: string exceeds the scratch buffer")
	ErrTrailingInput      = errors.New("codec: trailing input after the document")
	ErrNotObject          = errors.New("codec: document must be an object")
)

// contextBytes is how much input either side of a failure is quoted.
const contextBytes = 16

// ParseError reports where parsing stopped.
type ParseError struct {
	// Offset is the byte offset in the input.
	Offset int
	// Context is the input surrounding Offset.
	Context string
	Err     error
}

func newParseError(text []byte, off int, err error) *ParseError {
	off = min(max(off, 0), len(text))
	lo := max(off-contextBytes, 0)
	hi := min(off+contextBytes, len(text))
	return &ParseError{Offset: off, Context: string(text[lo:hi]), Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d near %q", e.Err, e.Offset, e.Context)
}

func (e *ParseError) Unwrap() error { return e.Err }
