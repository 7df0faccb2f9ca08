package archive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"baccarat-lite/shoe"
)

type HTTPHandler struct {
	svc Service
	log zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type resetRequest struct {
	Owner string `json:"owner"`
}

type importRequest struct {
	BlobB64 string `json:"blobB64"`
}

func NewHTTPHandler(svc Service, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc: svc,
		log: log.With().Str("component", "archive_http").Logger(),
	}
}

// RegisterRoutes mounts the admin archive routes. Callers wrap r with the
// admin auth middleware.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shoes", h.handleRecent)
	r.Post("/shoes", h.handleImport)
	r.Get("/shoes/{id}", h.handleGet)
	r.Post("/reset", h.handleReset)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	shoes, err := h.svc.ListRecent(ctx, owner, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list recent shoes failed")
		writeError(w, http.StatusInternalServerError, "query recent shoes failed")
		return
	}

	items := make([]*shoe.WireShoe, 0, len(shoes))
	for _, s := range shoes {
		ws, err := shoe.ToWireShoe(s, false)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode shoe failed")
			return
		}
		items = append(items, ws)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing shoe id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	s, err := h.svc.GetShoe(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "shoe not found")
			return
		}
		h.log.Error().Err(err).Str("shoe_id", id).Msg("get shoe failed")
		writeError(w, http.StatusInternalServerError, "query shoe failed")
		return
	}

	ws, err := shoe.ToWireShoe(s, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode shoe failed")
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// handleImport restores a shoe exported by GET /shoes/{id}.
func (h *HTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := shoe.DecodeBase64(strings.TrimSpace(req.BlobB64))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shoe blob")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.svc.ImportShoe(ctx, s); err != nil {
		if errors.Is(err, ErrExists) {
			writeError(w, http.StatusConflict, "shoe already archived")
			return
		}
		h.log.Error().Err(err).Str("shoe_id", s.ID).Msg("import shoe failed")
		writeError(w, http.StatusInternalServerError, "import shoe failed")
		return
	}
	h.log.Info().Str("shoe_id", s.ID).Str("owner", s.Owner).Msg("shoe imported")

	ws, err := shoe.ToWireShoe(s, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode shoe failed")
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *HTTPHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	removed, err := h.svc.Clear(ctx, strings.TrimSpace(req.Owner))
	if err != nil {
		h.log.Error().Err(err).Msg("clear archive failed")
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	h.log.Info().Int("removed", removed).Str("owner", req.Owner).Msg("archive cleared")
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"removed": removed,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
