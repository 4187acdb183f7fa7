// Package review implements the interactive review of an analyzed bet:
// the modification ledger that accumulates the user's edits against the
// immutable proposal, and the session that projects and submits them.
package review

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/betdesk/internal/domain"
)

// Ledger records the user's modifications to a proposed slip without ever
// mutating the proposal itself. Stake overrides, additions and removals are
// kept separately and folded in at projection time, so Reset is a wipe and
// the effective view is always derivable from proposal + ledger.
type Ledger struct {
	originals    []domain.BetSelectionItem
	events       []domain.BetEvent
	defaultStake float64
	maxStake     float64

	edited  map[domain.SelectionRef]float64
	added   []domain.AddedSelectionItem
	removed map[int]bool
}

// NewLedger opens an empty ledger over a bet's proposed selections. Stake
// edits are capped at the bet's starting balance snapshot; defaultStake is
// the initial stake for user additions.
func NewLedger(bet domain.Bet, defaultStake float64) *Ledger {
	return &Ledger{
		originals:    bet.Items(),
		events:       bet.Events,
		defaultStake: defaultStake,
		maxStake:     bet.StartingBalance(),
		edited:       make(map[domain.SelectionRef]float64),
		removed:      make(map[int]bool),
	}
}

// clampStake folds every bad stake input to a safe value. Unparseable,
// NaN and negative inputs become 0; anything above the starting balance
// snapshot is capped at it. A zero or missing snapshot caps every edit
// to 0: no bankroll, no stake.
func (l *Ledger) clampStake(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > l.maxStake {
		return l.maxStake
	}
	return value
}

// UpdateStake records a stake override for the referenced selection and
// returns the value actually stored after clamping.
func (l *Ledger) UpdateStake(ref domain.SelectionRef, raw string) float64 {
	stake := l.clampStake(raw)
	l.edited[ref] = stake
	return stake
}

// EffectiveStake is the stake the slip currently shows for a selection:
// the user's override when one exists, else the stake on the item.
func (l *Ledger) EffectiveStake(ref domain.SelectionRef, itemStake float64) float64 {
	if stake, ok := l.edited[ref]; ok {
		return stake
	}
	return itemStake
}

// AddMarketSelection adds an outcome from one of the bet's known events.
// The event is looked up by name so the addition carries the full fixture
// reference. An unknown name still adds: the row gets a placeholder
// fixture (the name as given, current time, unknown competition), so
// ledger writes never fail. The new row starts at the default stake.
func (l *Ledger) AddMarketSelection(eventName string, market domain.MarketOption, sel domain.SelectionOption) domain.SelectionRef {
	event := domain.EventInfo{
		Name:        eventName,
		Time:        time.Now().UTC().Format(time.RFC3339),
		Competition: domain.Competition{Name: domain.UnknownCompetitionName},
	}
	for _, e := range l.events {
		if e.Name == eventName {
			event = e.EventInfo
			break
		}
	}
	return l.appendAdded(event, market, sel)
}

// AddNewMatch adds an outcome for a fixture outside the analyzed bet, as
// fetched from the backend's market catalogue.
func (l *Ledger) AddNewMatch(event domain.EventInfo, market domain.MarketOption, sel domain.SelectionOption) domain.SelectionRef {
	return l.appendAdded(event, market, sel)
}

func (l *Ledger) appendAdded(event domain.EventInfo, market domain.MarketOption, sel domain.SelectionOption) domain.SelectionRef {
	item := domain.AddedSelectionItem{
		ID:            uuid.NewString(),
		Event:         event,
		Market:        sel.Name,
		MarketName:    market.Name,
		SelectionName: sel.Name,
		Odds:          sel.Odds,
		Stake:         l.defaultStake,
		MarketID:      market.MarketID,
		SelectionID:   sel.SelectionID,
	}
	l.added = append(l.added, item)
	return domain.AddedRef(item.ID)
}

// RemoveSelection removes the selection at the given slip index. Indices
// below the proposal length address originals by their pre-removal index
// and flag them removed without reindexing the rest, so every surviving
// original keeps its ref for the life of the session. Indices at or above
// the proposal length address additions positionally and drop them
// outright. The override for a removed selection is pruned with it.
func (l *Ledger) RemoveSelection(index int) error {
	if index < 0 {
		return fmt.Errorf("review.RemoveSelection: negative index %d", index)
	}

	if index < len(l.originals) {
		l.removed[index] = true
		delete(l.edited, domain.OriginalRef(index))
		return nil
	}

	pos := index - len(l.originals)
	if pos >= len(l.added) {
		return fmt.Errorf("review.RemoveSelection: index %d out of range", index)
	}
	delete(l.edited, domain.AddedRef(l.added[pos].ID))
	l.added = append(l.added[:pos], l.added[pos+1:]...)
	return nil
}

// Originals returns the immutable proposed selection list.
func (l *Ledger) Originals() []domain.BetSelectionItem { return l.originals }

// Added returns a copy of the user-added selections, in addition order.
func (l *Ledger) Added() []domain.AddedSelectionItem {
	out := make([]domain.AddedSelectionItem, len(l.added))
	copy(out, l.added)
	return out
}

// Removed returns a copy of the removed-original index set.
func (l *Ledger) Removed() map[int]bool {
	out := make(map[int]bool, len(l.removed))
	for i := range l.removed {
		out[i] = true
	}
	return out
}

// Dirty reports whether the ledger holds any modification.
func (l *Ledger) Dirty() bool {
	return len(l.edited) > 0 || len(l.added) > 0 || len(l.removed) > 0
}

// Reset wipes every modification, restoring the proposal as the effective
// view.
func (l *Ledger) Reset() {
	l.edited = make(map[domain.SelectionRef]float64)
	l.added = nil
	l.removed = make(map[int]bool)
}

// FinalSelections folds the ledger into the flat list submitted to the
// backend: surviving originals first with overrides applied, then
// additions. Every row is stripped to the placement fields; review-only
// metadata such as reasoning does not travel back.
func (l *Ledger) FinalSelections() []domain.BetSelectionItem {
	var out []domain.BetSelectionItem

	for i, item := range l.originals {
		if l.removed[i] {
			continue
		}
		out = append(out, domain.BetSelectionItem{
			Event:       item.Event,
			Market:      item.Market,
			Odds:        item.Odds,
			Stake:       l.EffectiveStake(domain.OriginalRef(i), item.Stake),
			MarketID:    item.MarketID,
			SelectionID: item.SelectionID,
		})
	}

	for _, item := range l.added {
		out = append(out, domain.BetSelectionItem{
			Event:       item.Event,
			Market:      item.Market,
			Odds:        item.Odds,
			Stake:       l.EffectiveStake(domain.AddedRef(item.ID), item.Stake),
			MarketID:    item.MarketID,
			SelectionID: item.SelectionID,
		})
	}

	return out
}
