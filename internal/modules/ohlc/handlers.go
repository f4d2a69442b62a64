package ohlc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
	"github.com/rsheldon/tradelog/internal/domain"
)

// TradeChecker verifies that a trade exists and belongs to the caller before
// candles are read or written against it.
type TradeChecker interface {
	Get(userID, id string) (*domain.Trade, error)
}

// Handlers contains HTTP handlers for trade price context
type Handlers struct {
	repo   *Repository
	trades TradeChecker
	log    zerolog.Logger
}

// NewHandlers creates a new OHLC handlers instance
func NewHandlers(repo *Repository, trades TradeChecker, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:   repo,
		trades: trades,
		log:    log.With().Str("handler", "ohlc").Logger(),
	}
}

// RegisterRoutes mounts the OHLC routes under the trades tree
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/trades/{id}/ohlc", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Put("/", h.HandleReplace)
		r.Delete("/", h.HandleDelete)
		r.Get("/indicators", h.HandleIndicators)
	})
}

func (h *Handlers) ownedTradeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if _, err := h.trades.Get(userID, id); err != nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return "", false
	}
	return id, true
}

// HandleList returns a trade's candles
// GET /api/trades/{id}/ohlc
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.ownedTradeID(w, r)
	if !ok {
		return
	}

	candles, err := h.repo.ListByTrade(tradeID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list candles")
		http.Error(w, "Failed to list candles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

// HandleReplace swaps a trade's candles for the uploaded set
// PUT /api/trades/{id}/ohlc
func (h *Handlers) HandleReplace(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.ownedTradeID(w, r)
	if !ok {
		return
	}

	var candles []CandleRequest
	if err := json.NewDecoder(r.Body).Decode(&candles); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	for i, candle := range candles {
		if err := candle.Validate(); err != nil {
			http.Error(w, "candle "+strconv.Itoa(i)+": "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	stored, err := h.repo.Replace(tradeID, candles)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store candles")
		http.Error(w, "Failed to store candles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// HandleDelete clears a trade's candles
// DELETE /api/trades/{id}/ohlc
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.ownedTradeID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteByTrade(tradeID); err != nil {
		h.log.Error().Err(err).Msg("Failed to delete candles")
		http.Error(w, "Failed to delete candles", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIndicators computes an overlay over a trade's candles
// GET /api/trades/{id}/ohlc/indicators?name=sma&period=20
func (h *Handlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.ownedTradeID(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = IndicatorSMA
	}
	period := 14
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid period", http.StatusBadRequest)
			return
		}
		period = parsed
	}

	candles, err := h.repo.ListByTrade(tradeID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list candles")
		http.Error(w, "Failed to list candles", http.StatusInternalServerError)
		return
	}

	series, err := ComputeIndicator(name, period, candles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
