package trades

import (
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/metrics"
	"github.com/rsheldon/tradelog/internal/modules/analytics"
)

// MetricsHealJob backfills cached profit figures for closed trades that are
// missing them, typically rows imported before the cache-on-write rule or
// touched by a partial migration.
type MetricsHealJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewMetricsHealJob creates a new metrics heal job
func NewMetricsHealJob(repo *Repository, log zerolog.Logger) *MetricsHealJob {
	return &MetricsHealJob{
		repo: repo,
		log:  log.With().Str("job", "metrics_heal").Logger(),
	}
}

// Name returns the job name
func (j *MetricsHealJob) Name() string {
	return "metrics_heal"
}

// Run recomputes and stores metrics for every closed trade without a cached
// profit figure. Trades the engine cannot price are left untouched.
func (j *MetricsHealJob) Run() error {
	trades, err := j.repo.ListClosedMissingMetrics()
	if err != nil {
		return err
	}

	healed := 0
	for _, trade := range trades {
		m := analytics.ComputeTradeMetrics(trade)
		if m.ProfitLoss == nil {
			continue
		}
		if err := j.repo.UpdateMetrics(trade.ID, m.ProfitLoss, m.ProfitLossPercent); err != nil {
			j.log.Error().Err(err).Str("trade_id", trade.ID).Msg("Failed to heal trade metrics")
			continue
		}
		healed++
	}

	if healed > 0 {
		metrics.MetricsHealed.Add(float64(healed))
		j.log.Info().Int("healed", healed).Int("candidates", len(trades)).Msg("Backfilled trade metrics")
	}
	return nil
}
