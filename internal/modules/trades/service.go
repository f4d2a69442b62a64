package trades

import (
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/domain"
	"github.com/rsheldon/tradelog/internal/modules/analytics"
)

// Service applies the metric cache-on-write rule around the repository:
// closed trades get their derived figures computed before they hit disk,
// open trades keep them absent.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new trade service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "trade_service").Logger(),
	}
}

// Create validates, computes metrics and stores a new trade
func (s *Service) Create(userID string, req TradeRequest) (*domain.Trade, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	trade := req.ToDomain(userID)
	applyMetrics(&trade)
	return s.repo.Create(trade)
}

// Update replaces a trade with the given payload and recomputes its metrics.
// The stored cache never goes stale after an edit: it is overwritten from the
// new entry/exit/size/cost fields on every write.
func (s *Service) Update(userID, id string, req TradeRequest) (*domain.Trade, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	trade := req.ToDomain(userID)
	trade.ID = existing.ID
	trade.CreatedAt = existing.CreatedAt
	applyMetrics(&trade)
	return s.repo.Update(trade)
}

// Get retrieves a single trade
func (s *Service) Get(userID, id string) (*domain.Trade, error) {
	return s.repo.GetByID(userID, id)
}

// List returns the user's trades matching the filter
func (s *Service) List(userID string, filter ListFilter) ([]domain.Trade, error) {
	return s.repo.List(userID, filter)
}

// Delete removes a trade
func (s *Service) Delete(userID, id string) error {
	return s.repo.Delete(userID, id)
}

// TradesForUser returns a user's trades, optionally scoped to one account.
// The analytics service reads trades through this.
func (s *Service) TradesForUser(userID, accountID string) ([]domain.Trade, error) {
	return s.repo.List(userID, ListFilter{AccountID: accountID})
}

// applyMetrics fills the cached derived values for closed trades. A closed
// trade the engine cannot price (for example one missing its exit price)
// keeps nil metrics and is excluded from aggregates downstream.
func applyMetrics(trade *domain.Trade) {
	if !trade.IsClosed() {
		trade.ProfitLoss = nil
		trade.ProfitLossPercent = nil
		return
	}
	m := analytics.ComputeTradeMetrics(*trade)
	trade.ProfitLoss = m.ProfitLoss
	trade.ProfitLossPercent = m.ProfitLossPercent
}
