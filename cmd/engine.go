package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/match"
	"github.com/sells-group/resolve-cli/internal/store"
	"github.com/sells-group/resolve-cli/pkg/weights"
)

// loadMatcher restores the last published generation from the store and
// builds a matcher over it. Query commands fail with ErrCorpusUnavailable at
// match time if nothing has ever been ingested.
func loadMatcher(ctx context.Context) (*match.Matcher, func(), error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	engine := corpus.NewEngine()
	gen, err := st.LoadLatest(ctx)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}
	if gen != nil {
		engine.Install(gen)
	} else {
		zap.L().Warn("no generation in store; run ingest first")
	}

	w, err := weights.Load(cfg.Match.WeightsPath)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, eris.Wrap(err, "load weights")
	}

	cleanup := func() { _ = st.Close() }
	return match.New(engine, w), cleanup, nil
}
