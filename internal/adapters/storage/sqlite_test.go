package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betdesk/internal/adapters/storage"
	"github.com/alejandrodnm/betdesk/internal/domain"
)

func makeBet(id string, status domain.BetStatus, createdAt time.Time) domain.Bet {
	return domain.Bet{
		ID:        id,
		Status:    status,
		CreatedAt: domain.Timestamp{Time: createdAt},
		Balance:   &domain.BetBalance{Starting: 100},
		Selections: &domain.BetSelections{
			Items: []domain.BetSelectionItem{
				{
					Event:       domain.EventInfo{Name: "A v B", Time: "2026-08-30T15:00:00Z"},
					Market:      "MATCH_ODDS",
					Odds:        2.5,
					Stake:       10,
					SelectionID: "47972",
				},
			},
			Wager: domain.BetWager{Stake: 10, PotentialReturns: 25},
		},
	}
}

func TestSQLiteStore_UpsertAndGet(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	bet := makeBet("bet-1", domain.StatusAnalyzed, time.Now().UTC())
	require.NoError(t, db.UpsertBet(context.Background(), bet))

	got, err := db.GetBet(context.Background(), "bet-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzed, got.Status)
	require.Len(t, got.Items(), 1)
	assert.Equal(t, "A v B", got.Items()[0].Event.Name)
	assert.Equal(t, "47972", got.Items()[0].SelectionID.String())
	assert.InDelta(t, 100.0, got.StartingBalance(), 0.001)
}

func TestSQLiteStore_UpsertReplacesDocument(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	bet := makeBet("bet-1", domain.StatusAnalyzed, time.Now().UTC())
	require.NoError(t, db.UpsertBet(context.Background(), bet))

	bet.Status = domain.StatusApproved
	require.NoError(t, db.UpsertBet(context.Background(), bet))

	got, err := db.GetBet(context.Background(), "bet-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)

	bets, err := db.ListBets(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, bets, 1, "upsert never duplicates rows")
}

func TestSQLiteStore_ListBetsNewestFirst(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("old", domain.StatusFinished, now.Add(-48*time.Hour))))
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("new", domain.StatusAnalyzed, now)))
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("mid", domain.StatusPlaced, now.Add(-24*time.Hour))))

	bets, err := db.ListBets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, bets, 3)
	assert.Equal(t, "new", bets[0].ID)
	assert.Equal(t, "mid", bets[1].ID)
	assert.Equal(t, "old", bets[2].ID)

	limited, err := db.ListBets(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_ListByStatus(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("a", domain.StatusAnalyzed, now)))
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("b", domain.StatusFinished, now.Add(-time.Hour))))
	require.NoError(t, db.UpsertBet(context.Background(), makeBet("c", domain.StatusAnalyzed, now.Add(-2*time.Hour))))

	pending, err := db.ListByStatus(context.Background(), domain.StatusAnalyzed, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)
}

func TestSQLiteStore_GetBetNotFound(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetBet(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLiteStore_RejectsBetWithoutID(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.UpsertBet(context.Background(), domain.Bet{}))
}

func TestSQLiteStore_Wallet(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	// Sin snapshot todavía
	w, err := db.LatestWallet(context.Background())
	require.NoError(t, err)
	assert.Zero(t, w.Amount)

	require.NoError(t, db.SaveWallet(context.Background(), domain.Wallet{Amount: 250.5, Currency: "GBP"}))
	require.NoError(t, db.SaveWallet(context.Background(), domain.Wallet{Amount: 240.0, Currency: "GBP"}))

	w, err = db.LatestWallet(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 240.0, w.Amount, 0.001)
	assert.Equal(t, "GBP", w.Currency)
}
