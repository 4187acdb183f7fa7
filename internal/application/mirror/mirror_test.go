package mirror_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betdesk/internal/application/mirror"
	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

type fakeFeed struct {
	ch chan ports.FeedUpdate
}

func (f *fakeFeed) Subscribe(ctx context.Context) (<-chan ports.FeedUpdate, error) {
	return f.ch, nil
}
func (f *fakeFeed) Close() error { return nil }

type memStore struct {
	mu     sync.Mutex
	bets   map[string]domain.Bet
	wallet domain.Wallet
}

func newMemStore() *memStore {
	return &memStore{bets: make(map[string]domain.Bet)}
}

func (s *memStore) UpsertBet(ctx context.Context, bet domain.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bets[bet.ID] = bet
	return nil
}
func (s *memStore) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bets[id], nil
}
func (s *memStore) ListBets(ctx context.Context, limit int) ([]domain.Bet, error) { return nil, nil }
func (s *memStore) ListByStatus(ctx context.Context, status domain.BetStatus, limit int) ([]domain.Bet, error) {
	return nil, nil
}
func (s *memStore) SaveWallet(ctx context.Context, w domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = w
	return nil
}
func (s *memStore) LatestWallet(ctx context.Context) (domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet, nil
}
func (s *memStore) Close() error { return nil }

func TestMirror_WritesBetsAndWallet(t *testing.T) {
	feed := &fakeFeed{ch: make(chan ports.FeedUpdate, 4)}
	store := newMemStore()
	m := mirror.New(feed, store)

	var pending []string
	m.OnPendingReview = func(betID string) { pending = append(pending, betID) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	feed.ch <- ports.FeedUpdate{
		Collection: "bet_slips",
		ID:         "bet-1",
		Bet:        &domain.Bet{ID: "bet-1", Status: domain.StatusAnalyzed},
	}
	feed.ch <- ports.FeedUpdate{
		Collection: "wallets",
		ID:         "main",
		Wallet:     &domain.Wallet{Amount: 200, Currency: "GBP"},
	}

	require.Eventually(t, func() bool {
		w, _ := store.LatestWallet(context.Background())
		return w.Amount == 200
	}, time.Second, 5*time.Millisecond)

	bet, err := store.GetBet(context.Background(), "bet-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzed, bet.Status)
	assert.Equal(t, []string{"bet-1"}, pending)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestMirror_FeedClosedIsAnError(t *testing.T) {
	feed := &fakeFeed{ch: make(chan ports.FeedUpdate)}
	m := mirror.New(feed, newMemStore())

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	close(feed.ch)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "feed closed")
	case <-time.After(time.Second):
		t.Fatal("mirror did not stop")
	}
}
