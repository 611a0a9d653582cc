// Package jsonarenatesting provides fixtures shared by the package and
// integration tests.
package jsonarenatesting

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/forestrie/go-jsonarena/codec"
	"github.com/forestrie/go-jsonarena/store"
	"github.com/stretchr/testify/require"
)

const (
	DefaultArenaBytes = 1 << 16
	SnapshotPrefix    = "v1/snapshots/"
)

// SampleDocuments dump back to exactly the text they are parsed from.
var SampleDocuments = map[string]string{
	"scalars":     `{"a":1,"b":0.321,"c":-3.012,"d":{"33":-33,"":{}}}`,
	"nested":      `{"i":{"ii":{"iii":{}}}}`,
	"mixed array": `{"arr":[0,true,false,[],"s1","s2",{"yo":["z",{"w":[null]}]}]}`,
	"escapes":     `{"q\"\\\n":"\t\b\f\r"}`,
}

type TestConfig struct {
	// Seed makes generated documents the same from run to run.
	Seed            int64
	TestLabelPrefix string
	Container       string // can be "" defaults to TestLabelPrefix
	ArenaBytes      int    // can be 0 defaults to DefaultArenaBytes
}

type TestContext struct {
	Log    logger.Logger
	Storer *azblob.Storer
	T      *testing.T
	Rand   *rand.Rand
	cfg    TestConfig
}

// NewTestContext sets up logging and a seeded generator.
func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T:    t,
		Rand: rand.New(rand.NewSource(cfg.Seed)),
		cfg:  cfg,
	}
	logger.New("INFO")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

// NewBlobTestContext additionally connects to the blob store emulator.
func NewBlobTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := NewTestContext(t, cfg)

	container := cfg.Container
	if container == "" {
		container = cfg.TestLabelPrefix
	}

	var err error
	c.Storer, err = azblob.NewDev(azblob.NewDevConfigFromEnv(), container)
	if err != nil {
		t.Fatalf("failed to connect to blob store emulator: %v", err)
	}
	client := c.Storer.GetServiceClient()
	// Note: we expect a 'already exists' error here and  ignore it.
	_, _ = client.CreateContainer(context.Background(), container, nil)

	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// NewArena returns a fixed arena of the configured size.
func (c *TestContext) NewArena(opts ...arena.Option) *arena.Arena {
	size := c.cfg.ArenaBytes
	if size == 0 {
		size = DefaultArenaBytes
	}
	a, err := arena.New(make([]byte, size), opts...)
	require.NoError(c.T, err)
	return a
}

// Parse parses text into s and records it as the document root.
func (c *TestContext) Parse(s *store.Store, text string) store.Object {
	o, err := codec.Parse(s, []byte(text))
	require.NoError(c.T, err)
	require.NoError(c.T, s.SetRoot(o))
	return o
}

// GenerateDocument returns random JSON text with objects and arrays nested
// at most depth levels, each holding up to width members. Keys are drawn
// from a small alphabet so that many share prefixes.
func (c *TestContext) GenerateDocument(depth, width int) string {
	var sb strings.Builder
	c.writeObject(&sb, depth, width)
	return sb.String()
}

func (c *TestContext) writeObject(sb *strings.Builder, depth, width int) {
	n := c.Rand.Intn(width + 1)
	seen := map[string]bool{}
	sb.WriteByte('{')
	for i := 0; i < n; i++ {
		key := c.randomKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(seen) > 1 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, "%q:", key)
		c.writeValue(sb, depth-1, width)
	}
	sb.WriteByte('}')
}

func (c *TestContext) writeValue(sb *strings.Builder, depth, width int) {
	kinds := 5
	if depth > 0 {
		kinds = 7
	}
	switch c.Rand.Intn(kinds) {
	case 0:
		sb.WriteString("null")
	case 1:
		fmt.Fprintf(sb, "%t", c.Rand.Intn(2) == 1)
	case 2:
		fmt.Fprintf(sb, "%d", c.Rand.Intn(20001)-10000)
	case 3:
		fmt.Fprintf(sb, "%d.%d", c.Rand.Intn(100), c.Rand.Intn(100))
	case 4:
		fmt.Fprintf(sb, "%q", c.randomKey()+" text")
	case 5:
		c.writeObject(sb, depth, width)
	case 6:
		n := c.Rand.Intn(width + 1)
		sb.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.writeValue(sb, depth-1, width)
		}
		sb.WriteByte(']')
	}
}

func (c *TestContext) randomKey() string {
	const alphabet = "abc"
	b := make([]byte, 1+c.Rand.Intn(3))
	for i := range b {
		b[i] = alphabet[c.Rand.Intn(len(alphabet))]
	}
	return string(b)
}

func (c *TestContext) DeleteBlobsByPrefix(blobPrefixPath string) {
	var err error
	var r *azblob.ListerResponse
	var blobs []string

	var marker azblob.ListMarker
	for {
		r, err = c.Storer.List(
			context.Background(),
			azblob.WithListPrefix(blobPrefixPath), azblob.WithListMarker(marker))

		require.NoError(c.T, err)

		for _, i := range r.Items {
			blobs = append(blobs, *i.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	for _, blobPath := range blobs {
		err = c.Storer.Delete(context.Background(), blobPath)
		require.NoError(c.T, err)
	}
}
