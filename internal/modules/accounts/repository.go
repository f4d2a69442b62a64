package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rsheldon/tradelog/internal/domain"
)

var errEmptyName = errors.New("account name cannot be empty")

// ErrNotFound is returned when an account does not exist for the caller
var ErrNotFound = errors.New("account not found")

// Repository handles account database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

// Create inserts a new account owned by the given user
func (r *Repository) Create(userID string, req AccountRequest) (*domain.Account, error) {
	now := time.Now()
	account := domain.Account{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.Exec(`
		INSERT INTO accounts (id, user_id, name, account_type, currency, initial_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, account.AccountType,
		account.Currency, account.InitialBalance,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	r.log.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	return &account, nil
}

// GetByID retrieves an account scoped to its owner
func (r *Repository) GetByID(userID, id string) (*domain.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, account_type, currency, initial_balance, created_at, updated_at
		FROM accounts WHERE id = ? AND user_id = ?`, id, userID)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// ListByUser returns all accounts owned by a user
func (r *Repository) ListByUser(userID string) ([]domain.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, account_type, currency, initial_balance, created_at, updated_at
		FROM accounts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// Update modifies an account scoped to its owner
func (r *Repository) Update(userID, id string, req AccountRequest) (*domain.Account, error) {
	result, err := r.db.Exec(`
		UPDATE accounts
		SET name = ?, account_type = ?, currency = ?, initial_balance = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		req.Name, req.AccountType, req.Currency, req.InitialBalance,
		time.Now().Format(time.RFC3339), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(userID, id)
}

// Delete removes an account and, via cascade, its trades
func (r *Repository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// InitialBalance returns the equity baseline for analytics: one account's
// initial balance when scoped, otherwise the sum over the user's accounts.
func (r *Repository) InitialBalance(userID, accountID string) (float64, error) {
	if accountID != "" {
		account, err := r.GetByID(userID, accountID)
		if err != nil {
			return 0, err
		}
		return account.InitialBalance, nil
	}

	var total sql.NullFloat64
	err := r.db.QueryRow(`SELECT SUM(initial_balance) FROM accounts WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum initial balances: %w", err)
	}
	return total.Float64, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var createdAt, updatedAt string

	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.AccountType,
		&account.Currency, &account.InitialBalance, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		account.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		account.UpdatedAt = ts
	}
	return &account, nil
}
