package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// PruneJob deletes audit entries past the retention window
type PruneJob struct {
	repo          *Repository
	retentionDays int
	log           zerolog.Logger
}

// NewPruneJob creates a new audit prune job
func NewPruneJob(repo *Repository, retentionDays int, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		repo:          repo,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "audit_prune").Logger(),
	}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "audit_prune"
}

// Run deletes entries older than the retention cutoff
func (j *PruneJob) Run() error {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Pruned audit entries")
	}
	return nil
}
