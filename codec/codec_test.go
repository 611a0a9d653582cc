package codec

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/forestrie/go-jsonarena/arena"
	"github.com/forestrie/go-jsonarena/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	a, err := arena.New(make([]byte, 8192))
	require.NoError(t, err)
	return store.New(a)
}

func requireDump(t *testing.T, want string, o store.Object, opts ...Option) {
	t.Helper()
	got, err := Dump(o, opts...)
	require.NoError(t, err)
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDumpScenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "numbers normalise",
			text: `{"a":1,"b":32.1e-2,"c":-3.012,"d":{"33":-33,"":{}}}`,
			want: `{"a":1,"b":0.321,"c":-3.012,"d":{"33":-33,"":{}}}`,
		},
		{
			name: "nested objects",
			text: `{"i":{"ii":{"iii":{}}}}`,
			want: `{"i":{"ii":{"iii":{}}}}`,
		},
		{
			name: "mixed array",
			text: `{"arr":[0,true,false,[],"s1","s2",{"yo":["z",{"w":[null]}]}]}`,
			want: `{"arr":[0,true,false,[],"s1","s2",{"yo":["z",{"w":[null]}]}]}`,
		},
		{
			name: "empty key written last",
			text: `{"":1,"a":2}`,
			want: `{"a":2,"":1}`,
		},
		{
			name: "whitespace",
			text: " {\t\"a\" :\v[ 1 ,\ttrue ]\r\n, \"b\": null } \n",
			want: `{"a":[1,true],"b":null}`,
		},
		{
			name: "prefix keys in trie order",
			text: `{"ab":1,"a":2,"abc":3,"b":4}`,
			want: `{"a":2,"ab":1,"abc":3,"b":4}`,
		},
		{
			name: "escapes",
			text: `{"q\"\\\n":"\t\b\f\r\/"}`,
			want: `{"q\"\\\n":"\t\b\f\r/"}`,
		},
		{
			name: "large and small floats",
			text: `{"x":1e10,"y":-0.000001,"z":0}`,
			want: `{"x":1e+10,"y":-1e-06,"z":0}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			o, err := Parse(s, []byte(tt.text))
			require.NoError(t, err)
			requireDump(t, tt.want, o)
		})
	}
}

func TestDumpBuiltNestedObjects(t *testing.T) {
	s := newStore(t)
	objs := make([]store.Object, 4)
	for i := range objs {
		var err error
		objs[i], err = s.NewObject()
		require.NoError(t, err)
	}
	require.NoError(t, objs[0].SetObject("i", objs[1]))
	require.NoError(t, objs[1].SetObject("ii", objs[2]))
	require.NoError(t, objs[2].SetObject("iii", objs[3]))

	requireDump(t, `{"i":{"ii":{"iii":{}}}}`, objs[0])
}

func TestDumpBuiltArray(t *testing.T) {
	s := newStore(t)
	build := func() store.Array {
		w, err := s.NewArray(1)
		require.NoError(t, err)
		require.NoError(t, w.SetNull(0))
		wo, err := s.NewObject()
		require.NoError(t, err)
		require.NoError(t, wo.SetArray("w", w))

		yo, err := s.NewArray(2)
		require.NoError(t, err)
		require.NoError(t, yo.SetString(0, "z"))
		require.NoError(t, yo.SetObject(1, wo))
		yoo, err := s.NewObject()
		require.NoError(t, err)
		require.NoError(t, yoo.SetArray("yo", yo))

		empty, err := s.NewArray(0)
		require.NoError(t, err)
		a, err := s.NewArray(7)
		require.NoError(t, err)
		require.NoError(t, a.SetFloat(0, 0))
		require.NoError(t, a.SetBool(1, true))
		require.NoError(t, a.SetBool(2, false))
		require.NoError(t, a.SetArray(3, empty))
		require.NoError(t, a.SetString(4, "s1"))
		require.NoError(t, a.SetString(5, "s2"))
		require.NoError(t, a.SetObject(6, yoo))
		return a
	}
	const want = `[0,true,false,[],"s1","s2",{"yo":["z",{"w":[null]}]}]`

	got, err := AppendValue(nil, store.ArrayValue(build()))
	require.NoError(t, err)
	assert.Equal(t, want, string(got))

	root, err := s.NewObject()
	require.NoError(t, err)
	require.NoError(t, root.SetArray("k", build()))
	got, err = AppendDump([]byte("x="), root)
	require.NoError(t, err)
	assert.Equal(t, `x={"k":`+want+`}`, string(got))
}

func TestDumpUnsetSlotsAsNull(t *testing.T) {
	s := newStore(t)
	a, err := s.NewArray(2)
	require.NoError(t, err)
	require.NoError(t, a.SetFloat(0, 1))
	got, err := AppendValue(nil, store.ArrayValue(a))
	require.NoError(t, err)
	assert.Equal(t, `[1,null]`, string(got))
}

func TestDumpDeepKeysWithDefaults(t *testing.T) {
	const levels = 100
	var sb strings.Builder
	for i := 0; i < levels; i++ {
		fmt.Fprintf(&sb, `{"%020d":`, i)
	}
	sb.WriteString("{}")
	sb.WriteString(strings.Repeat("}", levels))
	text := sb.String()

	a, err := arena.New(make([]byte, 1<<16))
	require.NoError(t, err)
	o, err := Parse(store.New(a), []byte(text))
	require.NoError(t, err)

	got, err := Dump(o)
	require.NoError(t, err)
	assert.Equal(t, text, string(got))

	// the keys on the path add up to more than any single key
	_, err = Dump(o, WithMaxKeyBytes(1024))
	require.ErrorIs(t, err, ErrKeyTooLong)
}

func TestDumpFailures(t *testing.T) {
	s := newStore(t)

	nested := func(depth int) store.Object {
		root, err := s.NewObject()
		require.NoError(t, err)
		cur := root
		for i := 1; i < depth; i++ {
			next, err := s.NewObject()
			require.NoError(t, err)
			require.NoError(t, cur.SetObject("k", next))
			cur = next
		}
		return root
	}

	t.Run("depth at capacity", func(t *testing.T) {
		requireDump(t, `{"k":{"k":{"k":{}}}}`, nested(4), WithMaxDepth(4))
	})
	t.Run("depth over capacity", func(t *testing.T) {
		_, err := Dump(nested(5), WithMaxDepth(4))
		require.ErrorIs(t, err, ErrStackOverflow)
	})
	t.Run("key too long", func(t *testing.T) {
		o, err := s.NewObject()
		require.NoError(t, err)
		require.NoError(t, o.SetNull("abc"))
		requireDump(t, `{"abc":null}`, o, WithMaxKeyBytes(3))
		require.NoError(t, o.SetNull("abcd"))
		_, err = Dump(o, WithMaxKeyBytes(3))
		require.ErrorIs(t, err, ErrKeyTooLong)
	})
	t.Run("pending nodes", func(t *testing.T) {
		o, err := s.NewObject()
		require.NoError(t, err)
		for _, k := range []string{"ab", "b", "ac"} {
			require.NoError(t, o.SetNull(k))
		}
		requireDump(t, `{"ab":null,"ac":null,"b":null}`, o, WithMaxPendingNodes(3))
		_, err = Dump(o, WithMaxPendingNodes(2))
		require.ErrorIs(t, err, ErrStackOverflow)
	})
	t.Run("nan", func(t *testing.T) {
		o, err := s.NewObject()
		require.NoError(t, err)
		require.NoError(t, o.SetFloat("x", float32(math.NaN())))
		dst := []byte("keep")
		got, err := AppendDump(dst, o)
		require.ErrorIs(t, err, ErrUnsupportedFloat)
		assert.Equal(t, "keep", string(got))
	})
	t.Run("invalid handle", func(t *testing.T) {
		_, err := Dump(store.Object{})
		require.ErrorIs(t, err, store.ErrInvalidHandle)
	})
}

func TestParseErrors(t *testing.T) {
	type args struct {
		text string
		opts []Option
	}
	tests := []struct {
		name       string
		args       args
		wantErr    error
		wantOffset int
	}{
		{name: "empty", args: args{text: ""}, wantErr: ErrUnexpectedEOF, wantOffset: 0},
		{name: "top level array", args: args{text: `[1]`}, wantErr: ErrNotObject, wantOffset: 0},
		{name: "top level scalar", args: args{text: ` 1`}, wantErr: ErrNotObject, wantOffset: 1},
		{name: "trailing comma", args: args{text: `{"a":1,}`}, wantErr: ErrUnexpectedChar, wantOffset: 7},
		{name: "trailing comma in array", args: args{text: `{"a":[1,]}`}, wantErr: ErrUnexpectedChar, wantOffset: 8},
		{name: "missing colon", args: args{text: `{"a" 1}`}, wantErr: ErrUnexpectedChar, wantOffset: 5},
		{name: "unquoted key", args: args{text: `{a:1}`}, wantErr: ErrUnexpectedChar, wantOffset: 1},
		{name: "unterminated string", args: args{text: `{"a":"x`}, wantErr: ErrUnterminatedString, wantOffset: 7},
		{name: "leading zero", args: args{text: `{"a":01}`}, wantErr: ErrUnexpectedChar, wantOffset: 6},
		{name: "bare minus", args: args{text: `{"a":-}`}, wantErr: ErrMalformedNumber, wantOffset: 6},
		{name: "empty fraction", args: args{text: `{"a":1.}`}, wantErr: ErrMalformedNumber, wantOffset: 7},
		{name: "empty exponent", args: args{text: `{"a":1e+}`}, wantErr: ErrMalformedNumber, wantOffset: 8},
		{name: "out of range", args: args{text: `{"a":1e39}`}, wantErr: ErrMalformedNumber, wantOffset: 5},
		{name: "bad literal", args: args{text: `{"a":tru}`}, wantErr: ErrUnexpectedChar, wantOffset: 8},
		{name: "truncated literal", args: args{text: `{"a":nul`}, wantErr: ErrUnexpectedEOF, wantOffset: 8},
		{name: "unicode escape", args: args{text: `{"a":"\u0041"}`}, wantErr: ErrInvalidEscape, wantOffset: 7},
		{name: "trailing input", args: args{text: `{} x`}, wantErr: ErrTrailingInput, wantOffset: 3},
		{name: "unclosed object", args: args{text: `{"a":1`}, wantErr: ErrUnexpectedEOF, wantOffset: 6},
		{name: "depth", args: args{text: `{"a":{"b":{"c":{}}}}`, opts: []Option{WithMaxDepth(3)}}, wantErr: ErrStackOverflow, wantOffset: 16},
		{name: "array depth", args: args{text: `{"a":[[[]]]}`, opts: []Option{WithMaxDepth(3)}}, wantErr: ErrStackOverflow, wantOffset: 8},
		{name: "scratch", args: args{text: `{"abcde":1}`, opts: []Option{WithScratchBytes(4)}}, wantErr: ErrScratchOverflow, wantOffset: 6},
		{name: "staged values", args: args{text: `{"a":[1,2,3]}`, opts: []Option{WithMaxStagedValues(2)}}, wantErr: ErrStackOverflow, wantOffset: 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			o, err := Parse(s, []byte(tt.args.text), tt.args.opts...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, o.Valid())

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantOffset, pe.Offset)
			assert.Contains(t, tt.args.text, pe.Context)
		})
	}
}

func TestParseWithinCapacities(t *testing.T) {
	s := newStore(t)
	o, err := Parse(s, []byte(`{"a":{"b":{}}}`), WithMaxDepth(3))
	require.NoError(t, err)
	requireDump(t, `{"a":{"b":{}}}`, o)

	o, err = Parse(s, []byte(`{"ab":"cd"}`), WithScratchBytes(4))
	require.NoError(t, err)
	requireDump(t, `{"ab":"cd"}`, o)

	o, err = Parse(s, []byte(`{"a":[1,[2]]}`), WithMaxStagedValues(3))
	require.NoError(t, err)
	requireDump(t, `{"a":[1,[2]]}`, o)
}

func TestParseRoundTrip(t *testing.T) {
	const doc = `{"name":"arena","tags":["a","b",{"c":[true,null,1.5]}],"":{"x":-2},"nested":{"k":{"kk":[[],[{}]]}}}`

	s1 := newStore(t)
	o1, err := Parse(s1, []byte(doc))
	require.NoError(t, err)
	text1, err := Dump(o1)
	require.NoError(t, err)

	s2 := newStore(t)
	o2, err := Parse(s2, text1)
	require.NoError(t, err)
	text2, err := Dump(o2)
	require.NoError(t, err)

	assert.Equal(t, string(text1), string(text2))
	eq, err := store.Equal(store.ObjectValue(o1), store.ObjectValue(o2))
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestParseFailureReleasesUnderHeap(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unclosed document", text: `{"a":{"b":[1,{"c":"x"}],"d":"yy"`},
		{name: "inside array", text: `{"a":[{"c":"x"},"s",`},
		{name: "bad number deep", text: `{"a":{"b":{"c":[1,2,-x]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := arena.NewHeap()
			require.NoError(t, err)
			s := store.New(h)

			_, err = Parse(s, []byte(tt.text))
			require.Error(t, err)
			assert.Equal(t, uint64(0), h.Stats().Live)
		})
	}
}

func TestParseAllocationFailure(t *testing.T) {
	a, err := arena.New(make([]byte, 64))
	require.NoError(t, err)
	s := store.New(a)

	_, err = Parse(s, []byte(`{"a":"a long string value that cannot fit"}`))
	require.ErrorIs(t, err, arena.ErrAllocationFailure)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}
