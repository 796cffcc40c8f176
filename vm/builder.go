package vm

import (
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build Translators.
type Builder struct {
	pageSize    uint64
	numPages    uint64
	numFrames   uint64
	idGenerator sim.IDGenerator
	hooks       []sim.Hook
}

// MakeBuilder creates a new builder with the default geometry.
func MakeBuilder() Builder {
	return Builder{
		pageSize:  DefaultPageSize,
		numPages:  DefaultNumPages,
		numFrames: DefaultNumFrames,
	}
}

// WithPageSize sets the number of bytes in a page and in a frame.
func (b Builder) WithPageSize(pageSize uint64) Builder {
	b.pageSize = pageSize
	return b
}

// WithNumPages sets the number of logical pages.
func (b Builder) WithNumPages(n uint64) Builder {
	b.numPages = n
	return b
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n uint64) Builder {
	b.numFrames = n
	return b
}

// WithConfig sets the page size, the number of pages and the number of frames
// at once.
func (b Builder) WithConfig(c Config) Builder {
	b.pageSize = c.PageSize
	b.numPages = c.NumPages
	b.numFrames = c.NumFrames

	return b
}

// WithIDGenerator sets the generator that stamps the records. Records are
// numbered sequentially by default.
func (b Builder) WithIDGenerator(g sim.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// WithHook registers a hook on the translator to build.
func (b Builder) WithHook(h sim.Hook) Builder {
	hooks := make([]sim.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, h)

	return b
}

// Config returns the configuration the builder would build with.
func (b Builder) Config() Config {
	return Config{
		PageSize:  b.pageSize,
		NumPages:  b.numPages,
		NumFrames: b.numFrames,
	}
}

// Build returns a newly created Translator. It panics if the configuration is
// invalid; use NewTranslator to get an error instead.
func (b Builder) Build(name string) *Translator {
	t, err := NewTranslator(name, b.Config())
	if err != nil {
		panic(err)
	}

	if b.idGenerator != nil {
		t.idGenerator = b.idGenerator
	}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}

	return t
}
