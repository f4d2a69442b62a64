package journals

import (
	"errors"
	"strings"
	"time"
)

// Folder groups journal entries
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AccountID *string   `json:"account_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a single journal entry, optionally filed in a folder and linked
// to the trades it discusses.
type Entry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	AccountID      *string   `json:"account_id,omitempty"`
	FolderID       *string   `json:"folder_id,omitempty"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	LinkedTradeIDs []string  `json:"linked_trade_ids"`
	EntryDate      time.Time `json:"entry_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FolderRequest is the create/update payload for a folder
type FolderRequest struct {
	Name      string  `json:"name"`
	AccountID *string `json:"account_id"`
}

// Validate checks the folder payload
func (req *FolderRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("folder name cannot be empty")
	}
	return nil
}

// EntryRequest is the create/update payload for a journal entry
type EntryRequest struct {
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	AccountID      *string    `json:"account_id"`
	FolderID       *string    `json:"folder_id"`
	LinkedTradeIDs []string   `json:"linked_trade_ids"`
	EntryDate      *time.Time `json:"entry_date"`
}

// Validate checks and normalizes the entry payload. A missing entry date
// defaults to now.
func (req *EntryRequest) Validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("journal title cannot be empty")
	}
	if req.EntryDate == nil {
		now := time.Now()
		req.EntryDate = &now
	}
	if req.LinkedTradeIDs == nil {
		req.LinkedTradeIDs = []string{}
	}
	return nil
}
