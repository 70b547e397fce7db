package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetranet/tetranet/internal/factory"
	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *factory.TestApp) {
	t.Helper()

	app := factory.NewTestApp()
	router := NewRouter(RouterConfig{
		Logger:          testutil.NopLogger(),
		LobbyController: app.LobbyController,
		WSHandler:       app.WSHandler,
	})
	return router, app
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHistoryNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/ghost_room", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "HISTORY_NOT_FOUND")
}

func TestHistoryReturnsRecords(t *testing.T) {
	router, app := newTestRouter(t)

	record := &model.MatchRecord{
		Seed: "Alice_room",
		Rankings: []model.RankEntry{
			{Username: "Alice", Score: 4},
			{Username: "Bob", Score: 9},
		},
		FinishedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, app.Storage.SaveMatch(context.Background(), record))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/Alice_room", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Seed    string              `json:"seed"`
		Records []model.MatchRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Alice_room", body.Seed)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "Bob", body.Records[0].Rankings[1].Username)
}

func TestCatchAllServesBundleWith200(t *testing.T) {
	router, _ := newTestRouter(t)

	// Room-scoped, room+user-scoped, and unmatched paths all land on the
	// client bundle.
	for _, path := range []string{"/", "/Alice_room", "/Alice_room/Bob", "/no/such/page"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", "path %s", path)
	}
}

func TestStaticDirServesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<!doctype html><title>bundle</title>")
	writeFile(t, dir, "app.js", "console.log(1)")

	app := factory.NewTestApp()
	router := NewRouter(RouterConfig{
		Logger:          testutil.NopLogger(),
		LobbyController: app.LobbyController,
		WSHandler:       app.WSHandler,
		StaticDir:       dir,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Alice_room/Bob", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bundle")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.NotZero(t, cfg.ReadTimeout)
	assert.NotZero(t, cfg.ShutdownTimeout)
}
