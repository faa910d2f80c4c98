// Package idgen provides the identifiers used for requests, tasks and
// recording sessions.
package idgen

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// New returns a sequential generator whose first emitted ID is "1".
func New() Generator {
	return &sequentialGenerator{}
}

// NewParallel returns a generator that emits globally unique IDs that do not
// depend on a shared counter.
func NewParallel() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

type parallelGenerator struct{}

func (parallelGenerator) Generate() string {
	return xid.New().String()
}

var (
	defaultLock sync.RWMutex
	defaultGen  = NewParallel()
)

// UseSequential makes Generate emit sequential IDs. Tests use it to get
// deterministic request IDs.
func UseSequential() {
	defaultLock.Lock()
	defer defaultLock.Unlock()

	defaultGen = New()
}

// UseParallel makes Generate emit xid-based IDs. This is the default.
func UseParallel() {
	defaultLock.Lock()
	defer defaultLock.Unlock()

	defaultGen = NewParallel()
}

// Generate returns an ID from the process-wide generator.
func Generate() string {
	defaultLock.RLock()
	g := defaultGen
	defaultLock.RUnlock()

	return g.Generate()
}
