package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/auth"
)

// Handlers contains HTTP handlers for the analytics API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new analytics handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes mounts the analytics routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/stats", h.HandleStats)
		r.Get("/charts", h.HandleCharts)
		r.Get("/equity-curve", h.HandleEquityCurve)
		r.Get("/drawdown", h.HandleDrawdown)
		r.Get("/rolling-win-rate", h.HandleRollingWinRate)
		r.Get("/distribution", h.HandleDistribution)
		r.Get("/weekday", h.HandleWeekday)
		r.Get("/heatmap", h.HandleHeatmap)
		r.Get("/leaderboard/symbols", h.HandleSymbolLeaderboard)
		r.Get("/leaderboard/strategies", h.HandleStrategyLeaderboard)
	})
}

// queryFromRequest builds the computation scope from query parameters.
// Explicit start/end win over a named range preset.
func queryFromRequest(r *http.Request) (Query, error) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := Query{
		UserID:    userID,
		AccountID: r.URL.Query().Get("account_id"),
	}

	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if rawStart != "" || rawEnd != "" {
		var err error
		if q.Start, err = parseBound(rawStart); err != nil {
			return q, errors.New("invalid start date")
		}
		if q.End, err = parseBound(rawEnd); err != nil {
			return q, errors.New("invalid end date")
		}
		return q, nil
	}

	if preset := r.URL.Query().Get("range"); preset != "" {
		start, end := DateRangePreset(preset)
		q.Start, q.End = &start, &end
	}
	return q, nil
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

func windowFromRequest(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return DefaultRollingWindow, nil
	}
	window, err := strconv.Atoi(raw)
	if err != nil || window < 1 {
		return 0, errors.New("window must be a positive integer")
	}
	return window, nil
}

// HandleStats returns the portfolio statistics for the caller
// GET /api/analytics/stats?account_id=&range=&start=&end=
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.service.Stats(q)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleCharts returns every chart series in one response
// GET /api/analytics/charts?account_id=&range=&window=
func (h *Handlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	window, err := windowFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	charts, err := h.service.Charts(q, window)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute charts")
		http.Error(w, "Failed to compute charts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, charts)
}

// HandleEquityCurve returns the equity series
// GET /api/analytics/equity-curve
func (h *Handlers) HandleEquityCurve(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.EquityCurve(q) })
}

// HandleDrawdown returns the drawdown series
// GET /api/analytics/drawdown
func (h *Handlers) HandleDrawdown(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.Drawdown(q) })
}

// HandleRollingWinRate returns the rolling win rate series
// GET /api/analytics/rolling-win-rate?window=
func (h *Handlers) HandleRollingWinRate(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.RollingWinRate(q, window) })
}

// HandleDistribution returns the P/L histogram
// GET /api/analytics/distribution
func (h *Handlers) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.Distribution(q) })
}

// HandleWeekday returns per-weekday aggregates
// GET /api/analytics/weekday
func (h *Handlers) HandleWeekday(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.ByWeekday(q) })
}

// HandleHeatmap returns the weekday-by-hour P/L grid
// GET /api/analytics/heatmap
func (h *Handlers) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.HourHeatmap(q) })
}

// HandleSymbolLeaderboard returns the top symbols by total P/L
// GET /api/analytics/leaderboard/symbols
func (h *Handlers) HandleSymbolLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.Leaderboard(q, false) })
}

// HandleStrategyLeaderboard returns the top strategies by total P/L
// GET /api/analytics/leaderboard/strategies
func (h *Handlers) HandleStrategyLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q Query) (interface{}, error) { return h.service.Leaderboard(q, true) })
}

func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, compute func(Query) (interface{}, error)) {
	q, err := queryFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := compute(q)
	if err != nil {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to compute analytics")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
