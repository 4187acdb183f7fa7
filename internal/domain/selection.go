package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// refKind distinguishes the two addressing schemes for selections in a slip.
type refKind int

const (
	refOriginal refKind = iota + 1
	refAdded
)

// SelectionRef identifies one selection in a slip under review. Originals
// are addressed by their position in the immutable proposed list (the index
// BEFORE any removals); user-added selections by their generated id. The
// zero value is invalid.
type SelectionRef struct {
	kind  refKind
	index int
	id    string
}

// OriginalRef addresses the proposed selection at the given original index.
func OriginalRef(index int) SelectionRef {
	return SelectionRef{kind: refOriginal, index: index}
}

// AddedRef addresses a user-added selection by its generated id.
func AddedRef(id string) SelectionRef {
	return SelectionRef{kind: refAdded, id: id}
}

// IsOriginal reports whether the ref addresses a proposed selection.
func (r SelectionRef) IsOriginal() bool { return r.kind == refOriginal }

// OriginalIndex returns the original-list index for original refs.
func (r SelectionRef) OriginalIndex() (int, bool) {
	return r.index, r.kind == refOriginal
}

// AddedID returns the generated id for added refs.
func (r SelectionRef) AddedID() (string, bool) {
	return r.id, r.kind == refAdded
}

// String renders the stable display form: "original_<index>" or
// "added_<id>". This is the encoding shown next to each slip row and
// accepted back on the command line.
func (r SelectionRef) String() string {
	switch r.kind {
	case refOriginal:
		return "original_" + strconv.Itoa(r.index)
	case refAdded:
		return "added_" + r.id
	default:
		return "invalid"
	}
}

// ParseSelectionRef parses the display form back into a ref.
func ParseSelectionRef(s string) (SelectionRef, error) {
	if idx, ok := strings.CutPrefix(s, "original_"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return SelectionRef{}, fmt.Errorf("domain.ParseSelectionRef: bad original index %q", idx)
		}
		return OriginalRef(n), nil
	}
	if id, ok := strings.CutPrefix(s, "added_"); ok {
		if id == "" {
			return SelectionRef{}, fmt.Errorf("domain.ParseSelectionRef: empty added id")
		}
		return AddedRef(id), nil
	}
	return SelectionRef{}, fmt.Errorf("domain.ParseSelectionRef: unrecognized ref %q", s)
}

// AddedSelectionItem is a selection the user adds during review. It lives
// only in the modification ledger until submission.
type AddedSelectionItem struct {
	ID            string
	Event         EventInfo
	Market        string
	MarketName    string
	SelectionName string
	Odds          float64
	Stake         float64
	MarketID      string
	SelectionID   FlexID
	Reasoning     string
}

// SelectionMarketItem is one row of a grouped slip view.
type SelectionMarketItem struct {
	Market           string
	Odds             float64
	Stake            float64
	PotentialReturns float64
	MarketID         string
	SelectionID      FlexID
	Reasoning        string

	Ref           SelectionRef
	OriginalIndex int // -1 for added selections
	AddedIndex    int // -1 for original selections
}

// SelectionEventGroup is all slip rows for one fixture.
type SelectionEventGroup struct {
	Event   EventInfo
	Markets []SelectionMarketItem
}

// GroupSelectionsByEvent buckets the effective selection list (originals
// minus removals, then additions) by the default name+time event identity.
// See GroupSelectionsBy for the ordering contract.
func GroupSelectionsByEvent(originals []BetSelectionItem, added []AddedSelectionItem, removed map[int]bool) []SelectionEventGroup {
	return GroupSelectionsBy(IdentityNameTime, originals, added, removed)
}

// GroupSelectionsBy buckets selections by the given event identity.
// Originals keep their pre-removal index in Ref regardless of how many
// earlier items were removed. Groups appear in first-seen order; within a
// group, originals precede added items, each class in its own order.
// PotentialReturns reflects the stake on the item at call time; callers
// resolving stake overrides recompute it through their projector.
func GroupSelectionsBy(identity EventIdentity, originals []BetSelectionItem, added []AddedSelectionItem, removed map[int]bool) []SelectionEventGroup {
	type bucket struct {
		event EventInfo
		items []SelectionMarketItem
	}

	var order []string
	buckets := make(map[string]*bucket)

	put := func(event EventInfo, item SelectionMarketItem) {
		key := identity.Key(event)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{event: normalizeEvent(event)}
			buckets[key] = b
			order = append(order, key)
		}
		b.items = append(b.items, item)
	}

	for i, item := range originals {
		if removed[i] {
			continue
		}
		put(item.Event, SelectionMarketItem{
			Market:           item.Market,
			Odds:             item.Odds,
			Stake:            item.Stake,
			PotentialReturns: item.Stake * item.Odds,
			MarketID:         item.MarketID,
			SelectionID:      item.SelectionID,
			Reasoning:        item.Reasoning,
			Ref:              OriginalRef(i),
			OriginalIndex:    i,
			AddedIndex:       -1,
		})
	}

	for i, item := range added {
		put(item.Event, SelectionMarketItem{
			Market:           item.Market,
			Odds:             item.Odds,
			Stake:            item.Stake,
			PotentialReturns: item.Stake * item.Odds,
			MarketID:         item.MarketID,
			SelectionID:      item.SelectionID,
			Reasoning:        item.Reasoning,
			Ref:              AddedRef(item.ID),
			OriginalIndex:    -1,
			AddedIndex:       i,
		})
	}

	groups := make([]SelectionEventGroup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		groups = append(groups, SelectionEventGroup{Event: b.event, Markets: b.items})
	}
	return groups
}
