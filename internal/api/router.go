package api

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/tetranet/tetranet/internal/api/apierr"
	"github.com/tetranet/tetranet/internal/api/handler"
	"github.com/tetranet/tetranet/internal/middleware"
	"github.com/tetranet/tetranet/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	LobbyController *lobby.Controller
	WSHandler       http.Handler
	StaticDir       string
}

// NewRouter creates a new router: the websocket endpoint, the JSON API, and
// the SPA catch-all that answers every unmatched path with the client bundle.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, panicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.Handle("/ws", cfg.WSHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	historyHandler := handler.NewHistoryHandler(cfg.LobbyController)
	api.HandleFunc("/history/{seed}", historyHandler.Get).Methods(http.MethodGet)

	// Room and room+user paths are owned by the client-side router, so every
	// unmatched path serves the bundle with 200.
	r.PathPrefix("/").Handler(spaHandler{dir: cfg.StaticDir})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

// spaHandler serves the client bundle: real files when they exist, the index
// page for everything else.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.dir != "" {
		path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		index := filepath.Join(h.dir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "<!doctype html><title>tetranet</title>")
}
