package strategies

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/modules/audit"
)

// Handlers contains HTTP handlers for the strategies API
type Handlers struct {
	repo    *Repository
	auditor *audit.Recorder
	log     zerolog.Logger
}

// NewHandlers creates a new strategies handlers instance
func NewHandlers(repo *Repository, auditor *audit.Recorder, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		auditor: auditor,
		log:     log.With().Str("handler", "strategies").Logger(),
	}
}

// RegisterRoutes mounts the strategies routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/strategies", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList returns the caller's strategies
// GET /api/strategies
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	strategies, err := h.repo.ListByUser(userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list strategies")
		http.Error(w, "Failed to list strategies", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, strategies)
}

// HandleCreate creates a strategy
// POST /api/strategies
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req StrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	strategy, err := h.repo.Create(userID, req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create strategy")
		http.Error(w, "Failed to create strategy", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "strategy", strategy.ID, audit.ActionCreate, map[string]interface{}{
		"title": strategy.Title,
	})
	writeJSON(w, http.StatusCreated, strategy)
}

// HandleGet returns one strategy
// GET /api/strategies/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	strategy, err := h.repo.GetByID(userID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get strategy")
		http.Error(w, "Failed to get strategy", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, strategy)
}

// HandleUpdate modifies a strategy
// PUT /api/strategies/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req StrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	strategy, err := h.repo.Update(userID, id, req)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update strategy")
		http.Error(w, "Failed to update strategy", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "strategy", id, audit.ActionUpdate, map[string]interface{}{
		"title": strategy.Title,
	})
	writeJSON(w, http.StatusOK, strategy)
}

// HandleDelete removes a strategy
// DELETE /api/strategies/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.repo.Delete(userID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete strategy")
		http.Error(w, "Failed to delete strategy", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "strategy", id, audit.ActionDelete, nil)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
