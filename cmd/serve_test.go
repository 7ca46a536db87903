package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/match"
	"github.com/sells-group/resolve-cli/pkg/weights"
)

func newTestServer(t *testing.T, records ...corpus.CompanyRecord) *httptest.Server {
	t.Helper()
	engine := corpus.NewEngine()
	if records != nil {
		engine.Publish(records)
	}
	matcher := match.New(engine, weights.Default())
	srv := httptest.NewServer(newRouter(matcher, 5, rate.NewLimiter(rate.Inf, 0)))
	t.Cleanup(srv.Close)
	return srv
}

func TestServe_Health(t *testing.T) {
	srv := newTestServer(t, corpus.CompanyRecord{Domain: "acme.com"})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServe_MatchConfident(t *testing.T) {
	srv := newTestServer(t, corpus.CompanyRecord{Domain: "acme.com", CommercialName: "Acme Inc"})

	resp, err := http.Post(srv.URL+"/api/match", "application/json",
		strings.NewReader(`{"website":"acme.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out match.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Confident)
	require.NotNil(t, out.Top)
	assert.Equal(t, "acme.com", out.Top.Record.Domain)
}

func TestServe_MatchEmptyQuery(t *testing.T) {
	srv := newTestServer(t, corpus.CompanyRecord{Domain: "acme.com"})

	resp, err := http.Post(srv.URL+"/api/match", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_MatchMalformedBody(t *testing.T) {
	srv := newTestServer(t, corpus.CompanyRecord{Domain: "acme.com"})

	resp, err := http.Post(srv.URL+"/api/match", "application/json", strings.NewReader(`{nope`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_MatchNoCorpus(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/match", "application/json",
		strings.NewReader(`{"website":"acme.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServe_SearchLimit(t *testing.T) {
	srv := newTestServer(t,
		corpus.CompanyRecord{Domain: "a.com", SearchTokens: []string{"sharedword"}},
		corpus.CompanyRecord{Domain: "b.com", SearchTokens: []string{"sharedword"}},
		corpus.CompanyRecord{Domain: "c.com", SearchTokens: []string{"sharedword"}},
	)

	resp, err := http.Post(srv.URL+"/api/search", "application/json",
		strings.NewReader(`{"name":"sharedword","limit":2}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []match.Result `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Results, 2)
}

func TestServe_RateLimited(t *testing.T) {
	engine := corpus.NewEngine()
	engine.Publish([]corpus.CompanyRecord{{Domain: "acme.com"}})
	matcher := match.New(engine, weights.Default())
	srv := httptest.NewServer(newRouter(matcher, 5, rate.NewLimiter(0, 0)))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
