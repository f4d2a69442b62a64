package strategies

import (
	"errors"
	"strings"
	"time"
)

// Strategy is a written playbook entry the user tags trades with
type Strategy struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AccountID  *string   `json:"account_id,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	IsBulleted bool      `json:"is_bulleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StrategyRequest is the create/update payload for a strategy
type StrategyRequest struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	AccountID  *string `json:"account_id"`
	IsBulleted bool    `json:"is_bulleted"`
}

// Validate checks the strategy payload
func (req *StrategyRequest) Validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("strategy title cannot be empty")
	}
	return nil
}
