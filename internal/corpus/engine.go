package corpus

import (
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCorpusUnavailable is returned when a read arrives before any generation
// has ever been published. It is distinct from "no match found".
var ErrCorpusUnavailable = eris.New("corpus: no generation published")

// Engine owns the published generation. Readers take lock-free snapshots;
// writers build a complete new generation off to the side and swap it in with
// a single release-store. Readers in flight keep the generation they started
// with, so every query observes exactly one generation.
type Engine struct {
	gen atomic.Pointer[Generation]
	mu  sync.Mutex // serializes publishers
}

// NewEngine creates an engine with no published generation.
func NewEngine() *Engine {
	return &Engine{}
}

// Publish builds the indexes for records and atomically replaces the current
// generation. The previous generation stays valid for readers that already
// hold it.
func (e *Engine) Publish(records []CompanyRecord) *Generation {
	g := NewGeneration(records)
	e.Install(g)
	return g
}

// Install publishes an already-built generation (e.g. one restored from the
// persistent store).
func (e *Engine) Install(g *Generation) {
	e.mu.Lock()
	e.gen.Store(g)
	e.mu.Unlock()

	zap.L().Info("corpus: generation published",
		zap.String("generation_id", g.ID),
		zap.Int("records", g.Len()),
	)
}

// Snapshot returns the current generation. All index lookups for one query
// must go through a single snapshot.
func (e *Engine) Snapshot() (*Generation, error) {
	g := e.gen.Load()
	if g == nil {
		return nil, ErrCorpusUnavailable
	}
	return g, nil
}
