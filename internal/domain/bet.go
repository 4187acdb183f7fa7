package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BetStatus is the backend-owned lifecycle of a bet document. The client
// only reads it; the single transition it requests is approve (analyzed →
// approved) via the Betting Backend.
type BetStatus string

const (
	StatusIntent   BetStatus = "intent"
	StatusAnalyzed BetStatus = "analyzed"
	StatusApproved BetStatus = "approved"
	StatusReady    BetStatus = "ready"
	StatusPlaced   BetStatus = "placed"
	StatusSettled  BetStatus = "settled"
	StatusFinished BetStatus = "finished"
	StatusFailed   BetStatus = "failed"
	StatusSkipped  BetStatus = "skipped"
	StatusExisting BetStatus = "existing"
)

// FlexID is an opaque backend identifier that arrives as either a JSON
// string or a JSON number (Betfair selection ids are numeric). It is stored
// as its text form and re-emitted as a number when it is a plain integer.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = FlexID(n.String())
		return nil
	}
	*id = ""
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id FlexID) String() string { return string(id) }

// Timestamp tolerates every timestamp encoding the realtime store has used:
// RFC3339 strings, unix epoch numbers, and {seconds} / {_seconds} objects.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		t.Time = time.Time{}
		return nil
	}

	var epoch float64
	if err := json.Unmarshal(data, &epoch); err == nil {
		t.Time = time.Unix(int64(epoch), 0).UTC()
		return nil
	}

	var obj struct {
		Seconds        *int64 `json:"seconds"`
		PrivateSeconds *int64 `json:"_seconds"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		switch {
		case obj.Seconds != nil:
			t.Time = time.Unix(*obj.Seconds, 0).UTC()
		case obj.PrivateSeconds != nil:
			t.Time = time.Unix(*obj.PrivateSeconds, 0).UTC()
		default:
			t.Time = time.Time{}
		}
		return nil
	}

	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// BetSelectionItem is one market outcome within a bet, as proposed by the
// backend's AI analysis or submitted back on approval.
type BetSelectionItem struct {
	Event         EventInfo `json:"event"`
	Market        string    `json:"market"`
	Odds          float64   `json:"odds"`
	Stake         float64   `json:"stake"`
	MarketName    string    `json:"market_name,omitempty"`
	SelectionName string    `json:"selection_name,omitempty"`
	MarketID      string    `json:"market_id,omitempty"`
	SelectionID   FlexID    `json:"selection_id,omitempty"`
	Side          string    `json:"side,omitempty"`
	Reasoning     string    `json:"reasoning,omitempty"`
}

// BetWager is the backend-computed aggregate over the proposed selections.
type BetWager struct {
	Odds             float64 `json:"odds"`
	Stake            float64 `json:"stake"`
	PotentialReturns float64 `json:"potential_returns"`
}

// BetSelections is the immutable proposed selection list plus its wager.
type BetSelections struct {
	Items []BetSelectionItem `json:"items"`
	Wager BetWager           `json:"wager"`
}

// BetBalance is the bankroll snapshot around a bet's lifetime. Starting is
// taken when the intent is created and caps every stake edit.
type BetBalance struct {
	Starting  float64  `json:"starting"`
	Predicted *float64 `json:"predicted,omitempty"`
	Ending    *float64 `json:"ending,omitempty"`
}

// BetPreferences are the user preferences the analysis ran with.
type BetPreferences struct {
	RiskAppetite      float64  `json:"risk_appetite"`
	Budget            float64  `json:"budget"`
	ReliableTeamsOnly bool     `json:"reliable_teams_only"`
	Competitions      []string `json:"competitions,omitempty"`
}

// PlacementResult records one selection placed by the backend.
type PlacementResult struct {
	BetID       string `json:"bet_id"`
	MarketID    string `json:"market_id"`
	SelectionID FlexID `json:"selection_id"`
	PlacedDate  string `json:"placed_date"`
}

// SettlementResult records one selection's settlement outcome.
type SettlementResult struct {
	MarketID    string  `json:"market_id"`
	SelectionID FlexID  `json:"selection_id"`
	Status      string  `json:"status"` // WIN | LOSE | VOID
	Profit      float64 `json:"profit"`
	SizeMatched float64 `json:"sizeMatched"`
	BetID       string  `json:"betId"`
}

// Bet is the realtime store's bet document.
type Bet struct {
	ID                string             `json:"id"`
	Status            BetStatus          `json:"status"`
	CreatedAt         Timestamp          `json:"created_at"`
	TargetDate        string             `json:"target_date,omitempty"`
	Events            []BetEvent         `json:"events,omitempty"`
	Selections        *BetSelections     `json:"selections,omitempty"`
	Balance           *BetBalance        `json:"balance,omitempty"`
	Preferences       *BetPreferences    `json:"preferences,omitempty"`
	AIReasoning       string             `json:"ai_reasoning,omitempty"`
	PlacementResults  []PlacementResult  `json:"placement_results,omitempty"`
	SettlementResults []SettlementResult `json:"settlement_results,omitempty"`
	AnalyzedAt        Timestamp          `json:"analyzed_at,omitzero"`
	ApprovedAt        Timestamp          `json:"approved_at,omitzero"`
	PlacedAt          Timestamp          `json:"placed_at,omitzero"`
	FinishedAt        Timestamp          `json:"finished_at,omitzero"`
	RealizedReturns   float64            `json:"realized_returns,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// Items returns the proposed selection list, nil-safe.
func (b Bet) Items() []BetSelectionItem {
	if b.Selections == nil {
		return nil
	}
	return b.Selections.Items
}

// Title summarizes a bet for list rows: first event name plus a count of
// the remaining selections.
func (b Bet) Title() string {
	items := b.Items()
	if len(items) == 0 {
		return "No selections"
	}

	first := items[0].Event.Name
	others := len(items) - 1
	if others == 0 {
		return first
	}
	if others == 1 {
		return fmt.Sprintf("%s + 1 other", first)
	}
	return fmt.Sprintf("%s + %d others", first, others)
}

// Stake returns the backend-computed total stake of the proposal.
func (b Bet) Stake() float64 {
	if b.Selections == nil {
		return 0
	}
	return b.Selections.Wager.Stake
}

// PotentialReturns returns the backend-computed potential returns.
func (b Bet) PotentialReturns() float64 {
	if b.Selections == nil {
		return 0
	}
	return b.Selections.Wager.PotentialReturns
}

// StartingBalance is the bankroll snapshot taken at intent creation.
// It is the cap for every stake edit during review.
func (b Bet) StartingBalance() float64 {
	if b.Balance == nil {
		return 0
	}
	return b.Balance.Starting
}

// EndingBalance is the bankroll after settlement, 0 if not yet known.
func (b Bet) EndingBalance() float64 {
	if b.Balance == nil || b.Balance.Ending == nil {
		return 0
	}
	return *b.Balance.Ending
}

// IsFinished reports whether the bet has fully settled.
func (b Bet) IsFinished() bool { return b.Status == StatusFinished }

// IsPendingReview reports whether the bet is analyzed and awaiting human
// approval.
func (b Bet) IsPendingReview() bool { return b.Status == StatusAnalyzed }

// Profit is the settled outcome: the balance delta when both snapshots are
// present, else realized returns minus staked. 0 for unfinished bets.
func (b Bet) Profit() float64 {
	if !b.IsFinished() {
		return 0
	}
	if b.Balance != nil && b.Balance.Ending != nil {
		return *b.Balance.Ending - b.Balance.Starting
	}
	return b.RealizedReturns - b.Stake()
}

// IsWin classifies a finished bet from its balance delta.
func (b Bet) IsWin() bool { return b.Profit() >= 0 }

// DisplayPot is the headline amount for a bet row: the ending balance (or
// realized returns) once finished, otherwise the potential returns.
func (b Bet) DisplayPot() float64 {
	if b.IsFinished() {
		if b.Balance != nil && b.Balance.Ending != nil {
			return *b.Balance.Ending
		}
		return b.RealizedReturns
	}
	return b.PotentialReturns()
}

// EventNames returns the distinct event names across the proposed
// selections, in first-seen order.
func (b Bet) EventNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, item := range b.Items() {
		if seen[item.Event.Name] {
			continue
		}
		seen[item.Event.Name] = true
		names = append(names, item.Event.Name)
	}
	return names
}

// FindEvent looks up a full event (with its market options) by name.
func (b Bet) FindEvent(name string) (BetEvent, bool) {
	for _, e := range b.Events {
		if e.Name == name {
			return e, true
		}
	}
	return BetEvent{}, false
}

// Wallet is the live balance document synced from the bookmaker.
type Wallet struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}
