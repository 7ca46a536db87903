package match

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resolve-cli/internal/corpus"
)

func TestMatchAll_PreservesOrder(t *testing.T) {
	m := newTestMatcher(t,
		corpus.CompanyRecord{Domain: "acme.com", CommercialName: "Acme Inc"},
		corpus.CompanyRecord{Domain: "globex.io", CommercialName: "Globex"},
	)

	queries := []Query{
		{Website: "globex.io"},
		{Website: "acme.com"},
		{Name: "Zzqqxx Nonexistent"},
	}

	results, stats, err := m.MatchAll(context.Background(), queries, 4)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NotNil(t, results[0].Outcome.Top)
	assert.Equal(t, "globex.io", results[0].Outcome.Top.Record.Domain)
	require.NotNil(t, results[1].Outcome.Top)
	assert.Equal(t, "acme.com", results[1].Outcome.Top.Record.Domain)
	assert.False(t, results[2].Outcome.Confident)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Confident)
	assert.Equal(t, 0, stats.Errors)
	assert.InDelta(t, 2.0/3.0, stats.MatchRate, 0.001)
}

func TestMatchAll_RecordsPerQueryErrors(t *testing.T) {
	m := newTestMatcher(t, corpus.CompanyRecord{Domain: "acme.com"})

	queries := []Query{
		{Website: "acme.com"},
		{}, // empty row
	}

	results, stats, err := m.MatchAll(context.Background(), queries, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.True(t, eris.Is(results[1].Err, ErrInvalidQuery))

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Confident)
	assert.InDelta(t, 0.5, stats.MatchRate, 0.001)
}

func TestMatchAll_CancelledContext(t *testing.T) {
	m := newTestMatcher(t, corpus.CompanyRecord{Domain: "acme.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := m.MatchAll(ctx, []Query{{Website: "acme.com"}}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchAll_EmptyInput(t *testing.T) {
	m := newTestMatcher(t, corpus.CompanyRecord{Domain: "acme.com"})

	results, stats, err := m.MatchAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, BatchStats{}, stats)
}
