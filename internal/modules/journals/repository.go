package journals

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when an entry or folder does not exist for the caller
var ErrNotFound = errors.New("journal record not found")

// Repository handles journal database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new journal repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "journals").Logger(),
	}
}

// CreateFolder inserts a folder owned by the given user
func (r *Repository) CreateFolder(userID string, req FolderRequest) (*Folder, error) {
	folder := Folder{
		ID:        uuid.NewString(),
		UserID:    userID,
		AccountID: req.AccountID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(`
		INSERT INTO journal_folders (id, user_id, account_id, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		folder.ID, folder.UserID, folder.AccountID, folder.Name,
		folder.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return &folder, nil
}

// ListFolders returns a user's folders
func (r *Repository) ListFolders(userID string) ([]Folder, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, account_id, name, created_at
		FROM journal_folders WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]Folder, 0)
	for rows.Next() {
		var folder Folder
		var accountID sql.NullString
		var createdAt string
		if err := rows.Scan(&folder.ID, &folder.UserID, &accountID, &folder.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		if accountID.Valid {
			folder.AccountID = &accountID.String
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			folder.CreatedAt = ts
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// RenameFolder updates a folder's name, scoped to its owner
func (r *Repository) RenameFolder(userID, id, name string) error {
	result, err := r.db.Exec(`
		UPDATE journal_folders SET name = ? WHERE id = ? AND user_id = ?`,
		name, id, userID)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFolder removes a folder; its entries survive with folder_id cleared
func (r *Repository) DeleteFolder(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM journal_folders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateEntry inserts a journal entry owned by the given user
func (r *Repository) CreateEntry(userID string, req EntryRequest) (*Entry, error) {
	now := time.Now()
	entry := Entry{
		ID:             uuid.NewString(),
		UserID:         userID,
		AccountID:      req.AccountID,
		FolderID:       req.FolderID,
		Title:          req.Title,
		Content:        req.Content,
		LinkedTradeIDs: req.LinkedTradeIDs,
		EntryDate:      *req.EntryDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	linked, err := json.Marshal(entry.LinkedTradeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode linked trades: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO journals (id, user_id, account_id, folder_id, title, content, linked_trade_ids, entry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.AccountID, entry.FolderID,
		entry.Title, entry.Content, string(linked),
		entry.EntryDate.Format(time.RFC3339),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	r.log.Info().Str("journal_id", entry.ID).Msg("Journal entry created")
	return &entry, nil
}

// GetEntry retrieves one entry scoped to its owner
func (r *Repository) GetEntry(userID, id string) (*Entry, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, account_id, folder_id, title, content, linked_trade_ids, entry_date, created_at, updated_at
		FROM journals WHERE id = ? AND user_id = ?`, id, userID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns a user's entries, newest first, optionally narrowed to
// one folder.
func (r *Repository) ListEntries(userID, folderID string) ([]Entry, error) {
	query := `
		SELECT id, user_id, account_id, folder_id, title, content, linked_trade_ids, entry_date, created_at, updated_at
		FROM journals WHERE user_id = ?`
	args := []interface{}{userID}
	if folderID != "" {
		query += ` AND folder_id = ?`
		args = append(args, folderID)
	}
	query += ` ORDER BY entry_date DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// UpdateEntry replaces an entry's mutable fields, scoped to its owner
func (r *Repository) UpdateEntry(userID, id string, req EntryRequest) (*Entry, error) {
	linked, err := json.Marshal(req.LinkedTradeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode linked trades: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE journals SET account_id = ?, folder_id = ?, title = ?, content = ?,
			linked_trade_ids = ?, entry_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		req.AccountID, req.FolderID, req.Title, req.Content, string(linked),
		req.EntryDate.Format(time.RFC3339), time.Now().Format(time.RFC3339),
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetEntry(userID, id)
}

// DeleteEntry removes an entry scoped to its owner
func (r *Repository) DeleteEntry(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM journals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var accountID, folderID sql.NullString
	var linked, entryDate, createdAt, updatedAt string

	err := row.Scan(&entry.ID, &entry.UserID, &accountID, &folderID,
		&entry.Title, &entry.Content, &linked, &entryDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		entry.AccountID = &accountID.String
	}
	if folderID.Valid {
		entry.FolderID = &folderID.String
	}
	entry.LinkedTradeIDs = []string{}
	if err := json.Unmarshal([]byte(linked), &entry.LinkedTradeIDs); err != nil {
		entry.LinkedTradeIDs = []string{}
	}
	if ts, err := time.Parse(time.RFC3339, entryDate); err == nil {
		entry.EntryDate = ts
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entry.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		entry.UpdatedAt = ts
	}
	return &entry, nil
}
