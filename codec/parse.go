package codec

import (
	"fmt"
	"strconv"

	"github.com/forestrie/go-jsonarena/store"
)

type production uint8

const (
	prodObjectStart production = iota
	prodMembers
	prodValue
	prodColon
	prodString
	prodNumber
	prodValueSeparator
	prodElements
	prodElementSeparator
)

// parseFrame is an open object or array.
type parseFrame struct {
	kind store.Kind
	obj  store.Object
	// keyStart is where the pending member key starts in scratch.
	keyStart int
	// stageBase is the staged value count when the array was opened.
	stageBase int
}

type parser struct {
	st      *store.Store
	text    []byte
	off     int
	prods   stack[production]
	open    stack[parseFrame]
	staged  stack[store.Value]
	scratch []byte
	root    store.Object
}

// Parse builds the object described by text in st. The top level value must
// be an object. On failure the error is a *ParseError and no object is
// returned; with a reclaiming allocator everything built so far is released.
func Parse(st *store.Store, text []byte, opts ...Option) (store.Object, error) {
	o := newOptions(opts...)
	p := &parser{
		st:      st,
		text:    text,
		prods:   newStack[production]("production", 2*o.maxDepth+4),
		open:    newStack[parseFrame]("container", o.maxDepth),
		staged:  newStack[store.Value]("staged value", o.maxStaged),
		scratch: make([]byte, 0, o.scratchBytes),
	}
	if err := p.run(); err != nil {
		p.discard()
		return store.Object{}, newParseError(text, p.off, err)
	}
	return p.root, nil
}

func (p *parser) run() error {
	if err := p.prods.push(prodObjectStart); err != nil {
		return err
	}
	for p.prods.len() > 0 {
		prod := p.prods.pop()
		p.skipSpace()

		var err error
		switch prod {
		case prodObjectStart:
			err = p.objectStart()
		case prodMembers:
			err = p.pushAll(prodValueSeparator, prodValue, prodColon, prodString)
		case prodString:
			err = p.key()
		case prodColon:
			err = p.expect(':')
		case prodValue:
			err = p.value()
		case prodNumber:
			err = p.number()
		case prodValueSeparator:
			err = p.separator('}', prodMembers)
		case prodElements:
			err = p.pushAll(prodElementSeparator, prodValue)
		case prodElementSeparator:
			err = p.separator(']', prodElements)
		}
		if err != nil {
			return err
		}
	}
	p.skipSpace()
	if p.off < len(p.text) {
		return ErrTrailingInput
	}
	return nil
}

// pushAll pushes prods in order, so the last is processed first.
func (p *parser) pushAll(prods ...production) error {
	for _, prod := range prods {
		if err := p.prods.push(prod); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) objectStart() error {
	if p.open.len() == 0 {
		if c, ok := p.peek(); ok && c != '{' {
			return ErrNotObject
		}
	}
	if err := p.expect('{'); err != nil {
		return err
	}
	obj, err := p.st.NewObject()
	if err != nil {
		return err
	}
	if err := p.attach(store.ObjectValue(obj)); err != nil {
		return err
	}
	if err := p.open.push(parseFrame{kind: store.KindObject, obj: obj}); err != nil {
		return err
	}
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.off++
		p.open.pop()
		return nil
	}
	return p.prods.push(prodMembers)
}

func (p *parser) arrayStart() error {
	p.off++
	if err := p.open.push(parseFrame{kind: store.KindArray, stageBase: p.staged.len()}); err != nil {
		return err
	}
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.off++
		return p.closeArray()
	}
	return p.prods.push(prodElements)
}

// separator handles the token after an object member or array element.
func (p *parser) separator(closer byte, more production) error {
	c, ok := p.peek()
	if !ok {
		return ErrUnexpectedEOF
	}
	switch c {
	case ',':
		p.off++
		return p.prods.push(more)
	case closer:
		p.off++
		if closer == ']' {
			return p.closeArray()
		}
		p.open.pop()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnexpectedChar, c)
	}
}

func (p *parser) key() error {
	c, ok := p.peek()
	if !ok {
		return ErrUnexpectedEOF
	}
	if c != '"' {
		return fmt.Errorf("%w: %q, want a key", ErrUnexpectedChar, c)
	}
	p.open.peek().keyStart = len(p.scratch)
	return p.readString()
}

func (p *parser) value() error {
	c, ok := p.peek()
	if !ok {
		return ErrUnexpectedEOF
	}
	switch {
	case c == '{':
		return p.prods.push(prodObjectStart)
	case c == '[':
		return p.arrayStart()
	case c == '"':
		start := len(p.scratch)
		if err := p.readString(); err != nil {
			return err
		}
		v := store.StringValue(string(p.scratch[start:]))
		p.scratch = p.scratch[:start]
		return p.attach(v)
	case c == 't':
		return p.literal("true", store.BoolValue(true))
	case c == 'f':
		return p.literal("false", store.BoolValue(false))
	case c == 'n':
		return p.literal("null", store.NullValue())
	case c == '-' || isDigit(c):
		return p.prods.push(prodNumber)
	default:
		return fmt.Errorf("%w: %q", ErrUnexpectedChar, c)
	}
}

func (p *parser) literal(word string, v store.Value) error {
	rest := p.text[p.off:]
	for i := 0; i < len(word); i++ {
		if i >= len(rest) {
			p.off += i
			return ErrUnexpectedEOF
		}
		if rest[i] != word[i] {
			p.off += i
			return fmt.Errorf("%w: %q in %s", ErrUnexpectedChar, rest[i], word)
		}
	}
	p.off += len(word)
	return p.attach(v)
}

// number scans the longest prefix matching
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (p *parser) number() error {
	start, i, n := p.off, p.off, len(p.text)
	digits := func() bool {
		j := i
		for i < n && isDigit(p.text[i]) {
			i++
		}
		return i > j
	}
	malformed := func() error {
		p.off = i
		return ErrMalformedNumber
	}

	if i < n && p.text[i] == '-' {
		i++
	}
	switch {
	case i < n && p.text[i] == '0':
		i++
	case !digits():
		return malformed()
	}
	if i < n && p.text[i] == '.' {
		i++
		if !digits() {
			return malformed()
		}
	}
	if i < n && (p.text[i] == 'e' || p.text[i] == 'E') {
		i++
		if i < n && (p.text[i] == '+' || p.text[i] == '-') {
			i++
		}
		if !digits() {
			return malformed()
		}
	}

	f, err := strconv.ParseFloat(string(p.text[start:i]), 32)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedNumber, err)
	}
	p.off = i
	return p.attach(store.FloatValue(float32(f)))
}

// readString appends the string starting at the current quote to scratch,
// decoding escapes.
func (p *parser) readString() error {
	p.off++
	for {
		if p.off >= len(p.text) {
			return ErrUnterminatedString
		}
		at := p.off
		c := p.text[p.off]
		p.off++
		switch c {
		case '"':
			return nil
		case '\\':
			if p.off >= len(p.text) {
				return ErrUnterminatedString
			}
			e, ok := unescape(p.text[p.off])
			if !ok {
				return fmt.Errorf("%w: \\%c", ErrInvalidEscape, p.text[p.off])
			}
			p.off++
			c = e
		}
		if len(p.scratch) == cap(p.scratch) {
			p.off = at
			return fmt.Errorf("%w: %d bytes", ErrScratchOverflow, cap(p.scratch))
		}
		p.scratch = append(p.scratch, c)
	}
}

func unescape(c byte) (byte, bool) {
	switch c {
	case '"', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// attach hands a finished value to the innermost open container: stored
// under the pending key for an object, staged for an array. With nothing
// open, v is the document.
func (p *parser) attach(v store.Value) error {
	if p.open.len() == 0 {
		o, err := v.Object()
		if err != nil {
			return ErrNotObject
		}
		p.root = o
		return nil
	}
	f := p.open.peek()
	if f.kind == store.KindArray {
		if err := p.staged.push(v); err != nil {
			_ = p.st.Release(v)
			return err
		}
		return nil
	}
	key := string(p.scratch[f.keyStart:])
	p.scratch = p.scratch[:f.keyStart]
	if err := f.obj.Set(key, v); err != nil {
		_ = p.st.Release(v)
		return err
	}
	return nil
}

// closeArray commits the staged elements of the innermost array.
func (p *parser) closeArray() error {
	f := p.open.pop()
	base := f.stageBase
	n := p.staged.len() - base

	arr, err := p.st.NewArray(n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := arr.Set(i, p.staged.items[base+i]); err != nil {
			// the first i elements now belong to arr
			p.staged.items = append(p.staged.items[:base], p.staged.items[base+i:]...)
			_ = p.st.Release(store.ArrayValue(arr))
			return err
		}
	}
	clear(p.staged.items[base:])
	p.staged.items = p.staged.items[:base]
	return p.attach(store.ArrayValue(arr))
}

// discard releases a partial document.
func (p *parser) discard() {
	if p.root.Valid() {
		_ = p.st.Release(store.ObjectValue(p.root))
	}
	for _, v := range p.staged.items {
		_ = p.st.Release(v)
	}
	p.root = store.Object{}
}

func (p *parser) peek() (byte, bool) {
	if p.off >= len(p.text) {
		return 0, false
	}
	return p.text[p.off], true
}

func (p *parser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return ErrUnexpectedEOF
	}
	if got != c {
		return fmt.Errorf("%w: %q, want %q", ErrUnexpectedChar, got, c)
	}
	p.off++
	return nil
}

func (p *parser) skipSpace() {
	for p.off < len(p.text) {
		switch p.text[p.off] {
		case ' ', '\t', '\r', '\n', '\v':
			p.off++
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
