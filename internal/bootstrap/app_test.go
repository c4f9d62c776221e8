package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/storage/db"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	frontend := filepath.Join(dir, "frontend")
	require.NoError(t, os.MkdirAll(frontend, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<h1>history</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "app.js"), []byte("console.log(1)"), 0o644))

	return config.Config{
		Port:            "0",
		Env:             "test",
		DBDriver:        db.DriverSQLite,
		DBPath:          filepath.Join(dir, "data", "db.sqlite"),
		FrontendDir:     frontend,
		CORSAllowOrigin: []string{"http://localhost:3000"},
	}
}

func do(app *App, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := Build(context.Background(), config.Config{DBDriver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestBuildServesSaveHistoryAndDetail(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	resp := do(app, http.MethodPost, "/api/saveAnalysis", `{
		"userId": "u1",
		"resumeName": "cv.pdf",
		"jobTitle": "Backend",
		"resumeKeywords": ["go", "python"],
		"matched": ["go"],
		"missing": ["rust"]
	}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var saved struct {
		Status     string `json:"status"`
		AnalysisID int64  `json:"analysisId"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &saved))
	assert.Equal(t, "ok", saved.Status)
	assert.Positive(t, saved.AnalysisID)

	resp = do(app, http.MethodGet, "/api/history/u1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "cv.pdf", history[0]["resume_name"])
	assert.Equal(t, "Backend", history[0]["job_title"])
	assert.Nil(t, history[0]["thumbnail"])

	resp = do(app, http.MethodGet, "/api/analysis/"+jsonNumber(saved.AnalysisID), "")
	require.Equal(t, http.StatusOK, resp.Code)
	var detail []struct {
		Keyword         string `json:"keyword"`
		PresentInResume int    `json:"present_in_resume"`
		PresentInJob    int    `json:"present_in_job"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	require.Len(t, detail, 4)
	assert.Equal(t, "go", detail[0].Keyword)
	assert.Equal(t, "rust", detail[3].Keyword)
	assert.Equal(t, 0, detail[3].PresentInResume)
	assert.Equal(t, 1, detail[3].PresentInJob)

	resp = do(app, http.MethodGet, "/api/history/u2", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestBuildServesHealthMetricsAndFrontend(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	resp := do(app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"ok":true}`, resp.Body.String())

	resp = do(app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "keyword_history_http_requests_total")

	resp = do(app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "history")

	resp = do(app, http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(app, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBuildReopensExistingStore(t *testing.T) {
	cfg := testConfig(t)

	first, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	resp := do(first, http.MethodPost, "/api/saveAnalysis", `{"userId":"u1","resumeName":"a.pdf"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, first.Close())

	second, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	resp = do(second, http.MethodGet, "/api/history/u1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	assert.Len(t, history, 1)
}

func jsonNumber(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
