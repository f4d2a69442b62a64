package trades

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/metrics"
	"github.com/rsheldon/tradelog/internal/modules/audit"
)

// StatsInvalidator drops cached portfolio statistics for a user after a
// trade mutation. The analytics service implements it.
type StatsInvalidator interface {
	Invalidate(userID string)
}

// Handlers contains HTTP handlers for the trades API
type Handlers struct {
	service     *Service
	auditor     *audit.Recorder
	invalidator StatsInvalidator
	log         zerolog.Logger
}

// NewHandlers creates a new trades handlers instance
func NewHandlers(service *Service, auditor *audit.Recorder, invalidator StatsInvalidator, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:     service,
		auditor:     auditor,
		invalidator: invalidator,
		log:         log.With().Str("handler", "trades").Logger(),
	}
}

// RegisterRoutes mounts the trades routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/import", h.HandleImport)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList returns the caller's trades, optionally filtered
// GET /api/trades?account_id=&status=&symbol=&strategy=&start=&end=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	filter := ListFilter{
		AccountID: q.Get("account_id"),
		Status:    q.Get("status"),
		Symbol:    q.Get("symbol"),
		Strategy:  q.Get("strategy"),
	}
	var err error
	if filter.Start, err = parseBound(q.Get("start")); err != nil {
		http.Error(w, "Invalid start date", http.StatusBadRequest)
		return
	}
	if filter.End, err = parseBound(q.Get("end")); err != nil {
		http.Error(w, "Invalid end date", http.StatusBadRequest)
		return
	}

	trades, err := h.service.List(userID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list trades")
		http.Error(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, trades)
}

// HandleCreate creates a new trade
// POST /api/trades
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.service.Create(userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if !isValidationError(err) {
			h.log.Error().Err(err).Msg("Failed to create trade")
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.afterWrite(userID, "create")
	h.auditor.Record(userID, "trade", trade.ID, audit.ActionCreate, map[string]interface{}{
		"symbol": trade.Symbol,
		"status": string(trade.Status),
	})
	writeJSON(w, http.StatusCreated, trade)
}

// HandleGet returns one trade
// GET /api/trades/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	trade, err := h.service.Get(userID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get trade")
		http.Error(w, "Failed to get trade", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, trade)
}

// HandleUpdate replaces a trade
// PUT /api/trades/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.service.Update(userID, id, req)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if !isValidationError(err) {
			h.log.Error().Err(err).Msg("Failed to update trade")
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.afterWrite(userID, "update")
	h.auditor.Record(userID, "trade", id, audit.ActionUpdate, map[string]interface{}{
		"symbol": trade.Symbol,
		"status": string(trade.Status),
	})
	writeJSON(w, http.StatusOK, trade)
}

// HandleDelete removes a trade
// DELETE /api/trades/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.service.Delete(userID, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete trade")
		http.Error(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.afterWrite(userID, "delete")
	h.auditor.Record(userID, "trade", id, audit.ActionDelete, nil)
	w.WriteHeader(http.StatusNoContent)
}

// HandleImport ingests a CSV file of trades into one account
// POST /api/trades/import?account_id= (body: text/csv)
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	body := r.Body
	// Accept either a raw CSV body or a multipart form with a "file" field.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Missing file upload", http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.service.Import(userID, accountID, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if result.Imported > 0 {
		h.afterWrite(userID, "import")
		h.auditor.Record(userID, "trade", accountID, audit.ActionImport, map[string]interface{}{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) afterWrite(userID, operation string) {
	metrics.TradesWritten.WithLabelValues(operation).Inc()
	if h.invalidator != nil {
		h.invalidator.Invalidate(userID)
	}
}

// isValidationError distinguishes payload problems from infrastructure
// failures; repository errors are wrapped with fmt.Errorf and carry a cause.
func isValidationError(err error) bool {
	return errors.Unwrap(err) == nil
}

func parseBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		if ts, err = time.Parse(time.RFC3339, value); err != nil {
			return nil, err
		}
	}
	return &ts, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
