package corpus

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SnapshotBeforePublish(t *testing.T) {
	e := NewEngine()

	_, err := e.Snapshot()
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrCorpusUnavailable))
}

func TestEngine_PublishReplacesGeneration(t *testing.T) {
	e := NewEngine()

	first := e.Publish(testRecords())
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, first.ID, snap.ID)

	second := e.Publish(nil)
	snap, err = e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, second.ID, snap.ID)
	assert.Equal(t, 0, snap.Len())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEngine_SnapshotHoldsOldGenerationAcrossSwap(t *testing.T) {
	e := NewEngine()
	e.Publish(testRecords())

	snap, err := e.Snapshot()
	require.NoError(t, err)

	e.Publish(nil)

	// The held snapshot still serves the full old corpus.
	assert.Equal(t, 3, snap.Len())
	_, ok := snap.ByDomain("acme.com")
	assert.True(t, ok)
}

// TestEngine_ConcurrentSwapConsistency publishes corpora whose every record
// is stamped with the generation ID, while readers assert that everything
// visible through one snapshot belongs to a single generation.
func TestEngine_ConcurrentSwapConsistency(t *testing.T) {
	e := NewEngine()
	stamped := func(genTag string) []CompanyRecord {
		recs := make([]CompanyRecord, 20)
		for i := range recs {
			tok := fmt.Sprintf("tok%d", i)
			recs[i] = CompanyRecord{
				Domain:         fmt.Sprintf("d%d.com", i),
				CommercialName: genTag,
				SearchTokens:   []string{tok, genTag},
			}
		}
		return recs
	}
	e.Publish(stamped("g0"))

	var readers, writer sync.WaitGroup
	stopCh := make(chan struct{})

	// Writer: keeps swapping complete generations until readers finish.
	writer.Add(1)
	go func() {
		defer writer.Done()
		for i := 1; ; i++ {
			select {
			case <-stopCh:
				return
			default:
			}
			e.Publish(stamped(fmt.Sprintf("g%d", i)))
		}
	}()

	// Readers: every structure reachable from one snapshot must carry the
	// same generation stamp.
	var failures int64
	var mu sync.Mutex
	for r := 0; r < 8; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for i := 0; i < 500; i++ {
				snap, err := e.Snapshot()
				if err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
					continue
				}
				tag := snap.Records[0].CommercialName
				for _, rec := range snap.Records {
					if rec.CommercialName != tag {
						mu.Lock()
						failures++
						mu.Unlock()
					}
				}
				if doms := snap.DomainsForToken(tag); len(doms) != len(snap.Records) {
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}
		}()
	}

	readers.Wait()
	close(stopCh)
	writer.Wait()

	assert.Zero(t, failures)
}
