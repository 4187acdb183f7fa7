// Package mirror keeps the local store in sync with the realtime feed.
package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/betdesk/internal/ports"
)

// Mirror consumes feed updates and writes every document into the local
// store. It is the only writer of the store while watching; readers see
// the last state even after the feed drops.
type Mirror struct {
	feed  ports.Feed
	store ports.BetStore

	// OnPendingReview, when set, fires once per update for bets that
	// land in the analyzed state. Used by watch mode to prompt the user.
	OnPendingReview func(betID string)
}

// New creates a Mirror over the given feed and store.
func New(feed ports.Feed, store ports.BetStore) *Mirror {
	return &Mirror{feed: feed, store: store}
}

// Run subscribes and mirrors until the context is cancelled or the feed
// connection drops. A dropped feed is an error; the caller decides
// whether to restart.
func (m *Mirror) Run(ctx context.Context) error {
	updates, err := m.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("mirror.Run: %w", err)
	}

	slog.Info("mirroring realtime feed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, open := <-updates:
			if !open {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("mirror.Run: feed closed")
			}
			m.apply(ctx, update)
		}
	}
}

func (m *Mirror) apply(ctx context.Context, update ports.FeedUpdate) {
	switch {
	case update.Bet != nil:
		bet := *update.Bet
		if err := m.store.UpsertBet(ctx, bet); err != nil {
			slog.Warn("failed to mirror bet", "id", bet.ID, "error", err)
			return
		}
		slog.Debug("mirrored bet", "id", bet.ID, "status", bet.Status)

		if bet.IsPendingReview() && m.OnPendingReview != nil {
			m.OnPendingReview(bet.ID)
		}

	case update.Wallet != nil:
		if err := m.store.SaveWallet(ctx, *update.Wallet); err != nil {
			slog.Warn("failed to mirror wallet", "error", err)
			return
		}
		slog.Debug("mirrored wallet", "amount", update.Wallet.Amount)
	}
}
