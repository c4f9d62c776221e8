package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-history/internal/analyses"
	"keyword-history/internal/services/health"
	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/metrics"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newTestRouter(t *testing.T, pingErr error, frontend string) http.Handler {
	t.Helper()
	svc := analyses.NewService(analyses.NewMemoryRepo(), nil)
	return NewRouter(RouterDeps{
		Config: config.Config{
			FrontendDir:     frontend,
			CORSAllowOrigin: []string{"http://localhost:3000"},
			SaveRateLimit:   config.RateLimit{RPS: 1, Burst: 1},
		},
		AnalysisHandler: analyses.NewHandler(svc),
		Health:          health.NewService(stubPinger{err: pingErr}),
		Metrics:         metrics.NewCollector(),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestHealthzReportsStoreState(t *testing.T) {
	resp := get(newTestRouter(t, nil, ""), "/healthz")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = get(newTestRouter(t, errors.New("disk gone"), ""), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "disk gone")
}

func TestAPIRoutesAreMounted(t *testing.T) {
	r := newTestRouter(t, nil, "")

	resp := get(r, "/api/history/nobody")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	resp = get(r, "/api/analysis/abc")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestSaveRouteIsRateLimited(t *testing.T) {
	r := newTestRouter(t, nil, "")

	post := func() int {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/saveAnalysis", nil)
		r.ServeHTTP(resp, req)
		return resp.Code
	}
	// Empty body fails validation but still spends a token.
	assert.Equal(t, http.StatusBadRequest, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestFrontendServing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>index</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))
	r := newTestRouter(t, nil, dir)

	resp := get(r, "/")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "index")

	resp = get(r, "/style.css")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "body{}", resp.Body.String())

	resp = get(r, "/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"not found"}`, resp.Body.String())

	resp = get(r, "/../../etc/passwd")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFrontendDisabledWithoutDir(t *testing.T) {
	resp := get(newTestRouter(t, nil, ""), "/")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":3000", Addr(""))
	assert.Equal(t, ":8080", Addr("8080"))
	assert.Equal(t, ":9090", Addr(":9090"))
}
