package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

var (
	// ErrApprovalInFlight is returned when this session already has an
	// approval running.
	ErrApprovalInFlight = errors.New("review: approval already in flight")

	// ErrNoSelections is returned when the effective slip is empty.
	ErrNoSelections = errors.New("review: no selections to submit")

	// ErrInvalidStake is returned when any selection reaches approval
	// with a zero or negative stake.
	ErrInvalidStake = errors.New("review: every selection needs a positive stake")
)

// Options configure a review session.
type Options struct {
	// DefaultAddedStake is the initial stake for user-added selections.
	DefaultAddedStake float64

	// EventIdentity decides how selections bucket into fixtures.
	EventIdentity domain.EventIdentity

	// ApproveTimeout bounds the approval call. Zero means no timeout.
	ApproveTimeout time.Duration
}

// Session is one interactive review of an analyzed bet. It owns the
// modification ledger and is the only writer of it; projections (Groups,
// Totals) always reflect proposal + ledger at call time.
type Session struct {
	bet      domain.Bet
	ledger   *Ledger
	backend  ports.Backend
	identity domain.EventIdentity
	timeout  time.Duration

	mu        sync.Mutex
	approving bool
}

// NewSession opens a review session over an analyzed bet.
func NewSession(bet domain.Bet, backend ports.Backend, opts Options) *Session {
	return &Session{
		bet:      bet,
		ledger:   NewLedger(bet, opts.DefaultAddedStake),
		backend:  backend,
		identity: opts.EventIdentity,
		timeout:  opts.ApproveTimeout,
	}
}

// Bet returns the bet under review.
func (s *Session) Bet() domain.Bet { return s.bet }

// Ledger exposes the modification ledger for edits.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Groups projects the effective slip: originals minus removals plus
// additions, bucketed by fixture, with stake overrides and their returns
// applied to every row.
func (s *Session) Groups() []domain.SelectionEventGroup {
	groups := domain.GroupSelectionsBy(s.identity, s.ledger.Originals(), s.ledger.Added(), s.ledger.Removed())
	for gi := range groups {
		for mi := range groups[gi].Markets {
			m := &groups[gi].Markets[mi]
			m.Stake = s.ledger.EffectiveStake(m.Ref, m.Stake)
			m.PotentialReturns = m.Stake * m.Odds
		}
	}
	return groups
}

// Totals sums effective stakes and returns over the whole slip.
func (s *Session) Totals() domain.BetTotals {
	groups := domain.GroupSelectionsBy(s.identity, s.ledger.Originals(), s.ledger.Added(), s.ledger.Removed())
	return domain.CalculateBetTotals(groups, s.ledger.EffectiveStake)
}

// Approve submits the effective slip to the backend. Only one approval can
// be in flight per session; concurrent calls get ErrApprovalInFlight. Every
// selection must carry a positive stake, originals and additions alike. On
// failure the ledger is untouched so the user can fix and retry.
func (s *Session) Approve(ctx context.Context) error {
	s.mu.Lock()
	if s.approving {
		s.mu.Unlock()
		return ErrApprovalInFlight
	}
	s.approving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.approving = false
		s.mu.Unlock()
	}()

	selections := s.ledger.FinalSelections()
	if len(selections) == 0 {
		return ErrNoSelections
	}
	for _, sel := range selections {
		if sel.Stake <= 0 {
			return fmt.Errorf("%w: %s @ %.2f", ErrInvalidStake, sel.Event.Name, sel.Stake)
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.backend.ApproveBetIntent(ctx, s.bet.ID, selections); err != nil {
		return fmt.Errorf("review.Approve: %w", err)
	}
	return nil
}
