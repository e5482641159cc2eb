package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/mtlprog/vault/internal/observability"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewMux(handler, adminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers every API route on a new ServeMux.
func NewMux(handler *Handler, adminAPIKey string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/token", handler.GetToken)
	mux.HandleFunc("GET /api/v1/token/balance/{account}", handler.GetBalance)
	mux.HandleFunc("GET /api/v1/token/stream", handler.StreamToken)
	mux.HandleFunc("GET /api/v1/reward/quote", handler.GetRewardQuote)
	mux.HandleFunc("GET /api/v1/timelock", handler.GetTimelock)
	mux.HandleFunc("GET /api/v1/snapshots/latest", handler.GetLatestSnapshot)
	mux.HandleFunc("GET /api/v1/snapshots/{date}", handler.GetSnapshotByDate)
	mux.HandleFunc("GET /api/v1/snapshots", handler.ListSnapshots)
	mux.HandleFunc("GET /api/v1/export.xlsx", handler.ExportXLSX)
	mux.Handle("GET /metrics", observability.Handler())

	refreshHandler := http.HandlerFunc(handler.RefreshToken)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/token/refresh", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/token/refresh", refreshHandler)
	}

	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
