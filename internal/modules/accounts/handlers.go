package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/modules/audit"
)

// Handlers contains HTTP handlers for the accounts API
type Handlers struct {
	repo    *Repository
	auditor *audit.Recorder
	log     zerolog.Logger
}

// NewHandlers creates a new accounts handlers instance
func NewHandlers(repo *Repository, auditor *audit.Recorder, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		auditor: auditor,
		log:     log.With().Str("handler", "accounts").Logger(),
	}
}

// RegisterRoutes mounts the accounts routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList returns the caller's accounts
// GET /api/accounts
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	accounts, err := h.repo.ListByUser(userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

// HandleCreate creates a new account
// POST /api/accounts
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.repo.Create(userID, req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "account", account.ID, audit.ActionCreate, map[string]interface{}{
		"name": account.Name,
	})
	writeJSON(w, http.StatusCreated, account)
}

// HandleGet returns one account
// GET /api/accounts/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	account, err := h.repo.GetByID(userID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get account")
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// HandleUpdate modifies an account
// PUT /api/accounts/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.repo.Update(userID, id, req)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update account")
		http.Error(w, "Failed to update account", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "account", id, audit.ActionUpdate, map[string]interface{}{
		"name": account.Name,
	})
	writeJSON(w, http.StatusOK, account)
}

// HandleDelete removes an account
// DELETE /api/accounts/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.repo.Delete(userID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete account")
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "account", id, audit.ActionDelete, nil)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
