package strategies

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a strategy does not exist for the caller
var ErrNotFound = errors.New("strategy not found")

// Repository handles strategy database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new strategy repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "strategies").Logger(),
	}
}

// Create inserts a strategy owned by the given user
func (r *Repository) Create(userID string, req StrategyRequest) (*Strategy, error) {
	now := time.Now()
	strategy := Strategy{
		ID:         uuid.NewString(),
		UserID:     userID,
		AccountID:  req.AccountID,
		Title:      req.Title,
		Body:       req.Body,
		IsBulleted: req.IsBulleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := r.db.Exec(`
		INSERT INTO strategies (id, user_id, account_id, title, body, is_bulleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strategy.ID, strategy.UserID, strategy.AccountID,
		strategy.Title, strategy.Body, strategy.IsBulleted,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}
	return &strategy, nil
}

// GetByID retrieves a strategy scoped to its owner
func (r *Repository) GetByID(userID, id string) (*Strategy, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, account_id, title, body, is_bulleted, created_at, updated_at
		FROM strategies WHERE id = ? AND user_id = ?`, id, userID)

	strategy, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	return strategy, nil
}

// ListByUser returns a user's strategies ordered by title
func (r *Repository) ListByUser(userID string) ([]Strategy, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, account_id, title, body, is_bulleted, created_at, updated_at
		FROM strategies WHERE user_id = ? ORDER BY title`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer rows.Close()

	strategies := make([]Strategy, 0)
	for rows.Next() {
		strategy, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, *strategy)
	}
	return strategies, rows.Err()
}

// Update modifies a strategy scoped to its owner
func (r *Repository) Update(userID, id string, req StrategyRequest) (*Strategy, error) {
	result, err := r.db.Exec(`
		UPDATE strategies SET account_id = ?, title = ?, body = ?, is_bulleted = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		req.AccountID, req.Title, req.Body, req.IsBulleted,
		time.Now().Format(time.RFC3339), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update strategy: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(userID, id)
}

// Delete removes a strategy scoped to its owner
func (r *Repository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM strategies WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStrategy(row rowScanner) (*Strategy, error) {
	var strategy Strategy
	var accountID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&strategy.ID, &strategy.UserID, &accountID,
		&strategy.Title, &strategy.Body, &strategy.IsBulleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		strategy.AccountID = &accountID.String
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		strategy.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		strategy.UpdatedAt = ts
	}
	return &strategy, nil
}
