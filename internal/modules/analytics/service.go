package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/domain"
	"github.com/rsheldon/tradelog/internal/metrics"
)

// TradeSource supplies the trades a computation runs over. The trades module
// implements it.
type TradeSource interface {
	TradesForUser(userID, accountID string) ([]domain.Trade, error)
}

// AccountSource supplies the equity baseline. The accounts module implements it.
type AccountSource interface {
	InitialBalance(userID, accountID string) (float64, error)
}

// Query scopes a computation to one user, optionally one account and a
// date window over resolved trade times.
type Query struct {
	UserID    string
	AccountID string
	Start     *time.Time
	End       *time.Time
}

// Service computes portfolio statistics and chart series over stored trades.
// Full stat computations are cached per query until the TTL expires or a
// trade write invalidates the user's entries.
type Service struct {
	trades   TradeSource
	accounts AccountSource
	cache    *gocache.Cache
	log      zerolog.Logger
}

// NewService creates a new analytics service
func NewService(trades TradeSource, accounts AccountSource, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		trades:   trades,
		accounts: accounts,
		cache:    gocache.New(ttl, 2*ttl),
		log:      log.With().Str("component", "analytics").Logger(),
	}
}

// Stats computes (or serves from cache) the portfolio statistics for a query
func (s *Service) Stats(q Query) (*TradeStats, error) {
	key := statsKey(q)
	if cached, ok := s.cache.Get(key); ok {
		stats := cached.(TradeStats)
		return &stats, nil
	}

	trades, balance, err := s.load(q)
	if err != nil {
		return nil, err
	}

	stats := ComputePortfolioStats(trades, balance)
	metrics.StatsComputations.Inc()
	s.cache.SetDefault(key, stats)
	return &stats, nil
}

// Invalidate drops every cached stat entry belonging to a user. Called after
// any trade mutation.
func (s *Service) Invalidate(userID string) {
	prefix := "stats|" + userID + "|"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

// ChartData bundles every projection the dashboard renders in one response
type ChartData struct {
	EquityCurve    []EquityPoint         `json:"equityCurve"`
	Drawdown       []DrawdownPoint       `json:"drawdown"`
	RollingWinRate []RollingWinRatePoint `json:"rollingWinRate"`
	Distribution   []HistogramBin        `json:"distribution"`
	ByWeekday      []WeekdayStat         `json:"byWeekday"`
	Heatmap        [][]float64           `json:"heatmap"`
}

// Charts computes the full chart bundle for a query
func (s *Service) Charts(q Query, window int) (*ChartData, error) {
	trades, balance, err := s.load(q)
	if err != nil {
		return nil, err
	}

	return &ChartData{
		EquityCurve:    EquityCurve(trades, balance),
		Drawdown:       DrawdownCurve(trades, balance),
		RollingWinRate: RollingWinRate(trades, window),
		Distribution:   PLDistribution(trades),
		ByWeekday:      PLByWeekday(trades),
		Heatmap:        Heatmap(trades),
	}, nil
}

// EquityCurve computes the equity series for a query
func (s *Service) EquityCurve(q Query) ([]EquityPoint, error) {
	trades, balance, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return EquityCurve(trades, balance), nil
}

// Drawdown computes the drawdown series for a query
func (s *Service) Drawdown(q Query) ([]DrawdownPoint, error) {
	trades, balance, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return DrawdownCurve(trades, balance), nil
}

// RollingWinRate computes the rolling win rate series for a query
func (s *Service) RollingWinRate(q Query, window int) ([]RollingWinRatePoint, error) {
	trades, _, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return RollingWinRate(trades, window), nil
}

// Distribution computes the P/L histogram for a query
func (s *Service) Distribution(q Query) ([]HistogramBin, error) {
	trades, _, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return PLDistribution(trades), nil
}

// ByWeekday computes per-weekday aggregates for a query
func (s *Service) ByWeekday(q Query) ([]WeekdayStat, error) {
	trades, _, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return PLByWeekday(trades), nil
}

// HourHeatmap computes the weekday-by-hour P/L grid for a query
func (s *Service) HourHeatmap(q Query) ([][]float64, error) {
	trades, _, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return Heatmap(trades), nil
}

// Leaderboard computes the symbol or strategy ranking for a query
func (s *Service) Leaderboard(q Query, byStrategy bool) ([]LeaderboardEntry, error) {
	trades, _, err := s.load(q)
	if err != nil {
		return nil, err
	}
	if byStrategy {
		return StrategyLeaderboard(trades), nil
	}
	return SymbolLeaderboard(trades), nil
}

func (s *Service) load(q Query) ([]domain.Trade, float64, error) {
	trades, err := s.trades.TradesForUser(q.UserID, q.AccountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load trades: %w", err)
	}
	trades = FilterTradesByDateRange(trades, q.Start, q.End)

	balance, err := s.accounts.InitialBalance(q.UserID, q.AccountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load initial balance: %w", err)
	}
	return trades, balance, nil
}

func statsKey(q Query) string {
	start, end := int64(0), int64(0)
	if q.Start != nil {
		start = q.Start.Unix()
	}
	if q.End != nil {
		end = q.End.Unix()
	}
	return "stats|" + q.UserID + "|" + q.AccountID + "|" +
		strconv.FormatInt(start, 10) + "|" + strconv.FormatInt(end, 10)
}
