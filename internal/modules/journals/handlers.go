package journals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/modules/audit"
)

// Handlers contains HTTP handlers for the journals API
type Handlers struct {
	repo    *Repository
	auditor *audit.Recorder
	log     zerolog.Logger
}

// NewHandlers creates a new journals handlers instance
func NewHandlers(repo *Repository, auditor *audit.Recorder, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		auditor: auditor,
		log:     log.With().Str("handler", "journals").Logger(),
	}
}

// RegisterRoutes mounts the journal and folder routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/journals", func(r chi.Router) {
		r.Get("/", h.HandleListEntries)
		r.Post("/", h.HandleCreateEntry)
		r.Get("/{id}", h.HandleGetEntry)
		r.Put("/{id}", h.HandleUpdateEntry)
		r.Delete("/{id}", h.HandleDeleteEntry)
	})
	r.Route("/journal-folders", func(r chi.Router) {
		r.Get("/", h.HandleListFolders)
		r.Post("/", h.HandleCreateFolder)
		r.Put("/{id}", h.HandleRenameFolder)
		r.Delete("/{id}", h.HandleDeleteFolder)
	})
}

// HandleListEntries returns the caller's journal entries
// GET /api/journals?folder_id=
func (h *Handlers) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	entries, err := h.repo.ListEntries(userID, r.URL.Query().Get("folder_id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list journal entries")
		http.Error(w, "Failed to list journal entries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleCreateEntry creates a journal entry
// POST /api/journals
func (h *Handlers) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.repo.CreateEntry(userID, req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create journal entry")
		http.Error(w, "Failed to create journal entry", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "journal", entry.ID, audit.ActionCreate, map[string]interface{}{
		"title": entry.Title,
	})
	writeJSON(w, http.StatusCreated, entry)
}

// HandleGetEntry returns one journal entry
// GET /api/journals/{id}
func (h *Handlers) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	entry, err := h.repo.GetEntry(userID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Journal entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get journal entry")
		http.Error(w, "Failed to get journal entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleUpdateEntry modifies a journal entry
// PUT /api/journals/{id}
func (h *Handlers) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.repo.UpdateEntry(userID, id, req)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Journal entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update journal entry")
		http.Error(w, "Failed to update journal entry", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "journal", id, audit.ActionUpdate, map[string]interface{}{
		"title": entry.Title,
	})
	writeJSON(w, http.StatusOK, entry)
}

// HandleDeleteEntry removes a journal entry
// DELETE /api/journals/{id}
func (h *Handlers) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.repo.DeleteEntry(userID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Journal entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete journal entry")
		http.Error(w, "Failed to delete journal entry", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(userID, "journal", id, audit.ActionDelete, nil)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListFolders returns the caller's folders
// GET /api/journal-folders
func (h *Handlers) HandleListFolders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	folders, err := h.repo.ListFolders(userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list folders")
		http.Error(w, "Failed to list folders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// HandleCreateFolder creates a folder
// POST /api/journal-folders
func (h *Handlers) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	folder, err := h.repo.CreateFolder(userID, req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create folder")
		http.Error(w, "Failed to create folder", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// HandleRenameFolder renames a folder
// PUT /api/journal-folders/{id}
func (h *Handlers) HandleRenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.repo.RenameFolder(userID, id, req.Name)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Folder not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rename folder")
		http.Error(w, "Failed to rename folder", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteFolder removes a folder; entries inside it are kept
// DELETE /api/journal-folders/{id}
func (h *Handlers) HandleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.repo.DeleteFolder(userID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Folder not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete folder")
		http.Error(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
