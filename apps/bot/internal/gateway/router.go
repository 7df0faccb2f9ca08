// Package gateway exposes the bot over HTTP: the LINE webhook, the board
// websocket, the analyze endpoint and the admin archive api.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"baccarat-lite/analyze"
	"baccarat-lite/apps/bot/internal/archive"
	"baccarat-lite/apps/bot/internal/auth"
)

type RouterConfig struct {
	Line    *LineHandler // nil when LINE is not configured
	Hub     *Hub
	Archive *archive.HTTPHandler
	Admin   *auth.AdminAuth
	Log     zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	log := cfg.Log.With().Str("component", "http").Logger()
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handleHealth)
	if cfg.Hub != nil {
		// no timeout middleware on the websocket
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		if cfg.Line != nil {
			r.Method(http.MethodPost, "/callback", cfg.Line)
		}
		r.Route("/api", func(r chi.Router) {
			r.Post("/analyze", handleAnalyze)
			if cfg.Archive != nil {
				r.Group(func(r chi.Router) {
					r.Use(cfg.Admin.Middleware)
					cfg.Archive.RegisterRoutes(r)
				})
			}
		})
	})
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyze.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp := analyze.Run(req)
	status := http.StatusOK
	if !resp.OK {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func loggingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
