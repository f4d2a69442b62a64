package audit

import "time"

// Action enumerates audited mutations
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
)

// Entry is one audit log record
type Entry struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     Action                 `json:"action"`
	Changes    map[string]interface{} `json:"changes"`
	Timestamp  time.Time              `json:"timestamp"`
}
