package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
)

// Handlers contains HTTP handlers for the audit log API
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new audit handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "audit").Logger(),
	}
}

// RegisterRoutes mounts the audit log routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/audit-logs", h.HandleList)
}

// HandleList returns the caller's most recent audit entries
// GET /api/audit-logs
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 100
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	entries, err := h.repo.ListByUser(userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list audit entries")
		http.Error(w, "Failed to list audit entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}
