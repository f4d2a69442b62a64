package audit

import (
	"github.com/rs/zerolog"
)

// Recorder writes audit entries on behalf of the CRUD handlers. Recording is
// best effort: a failed audit write is logged and never fails the mutation
// that triggered it.
type Recorder struct {
	repo *Repository
	log  zerolog.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo *Repository, log zerolog.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  log.With().Str("component", "audit").Logger(),
	}
}

// Record stores one audit entry
func (rec *Recorder) Record(userID, entityType, entityID string, action Action, changes map[string]interface{}) {
	if rec == nil || rec.repo == nil {
		return
	}

	err := rec.repo.Insert(Entry{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
	})
	if err != nil {
		rec.log.Error().Err(err).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Str("action", string(action)).
			Msg("Failed to record audit entry")
	}
}
