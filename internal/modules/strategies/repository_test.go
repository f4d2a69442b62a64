package strategies

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsheldon/tradelog/internal/database"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestStrategyLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	req := StrategyRequest{Title: "Opening range breakout", Body: "Wait for the first 15 minutes.", IsBulleted: false}
	require.NoError(t, req.Validate())

	strategy, err := repo.Create("user-1", req)
	require.NoError(t, err)

	got, err := repo.GetByID("user-1", strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening range breakout", got.Title)
	assert.False(t, got.IsBulleted)

	req.Body = "- wait 15m\n- enter on break"
	req.IsBulleted = true
	updated, err := repo.Update("user-1", strategy.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.IsBulleted)

	require.NoError(t, repo.Delete("user-1", strategy.ID))
	_, err = repo.GetByID("user-1", strategy.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStrategiesAreUserScopedAndSorted(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create("user-1", StrategyRequest{Title: "Momentum"})
	require.NoError(t, err)
	_, err = repo.Create("user-1", StrategyRequest{Title: "Breakout"})
	require.NoError(t, err)
	_, err = repo.Create("user-2", StrategyRequest{Title: "Scalping"})
	require.NoError(t, err)

	mine, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Breakout", mine[0].Title)
	assert.Equal(t, "Momentum", mine[1].Title)
}

func TestStrategyValidation(t *testing.T) {
	req := StrategyRequest{Title: "  "}
	assert.Error(t, req.Validate())
}
