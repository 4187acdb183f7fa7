package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBet_Title(t *testing.T) {
	bet := domain.Bet{Selections: &domain.BetSelections{Items: []domain.BetSelectionItem{
		makeOriginal("A v B", "T1", "MATCH_ODDS", 10, 2.0),
	}}}
	assert.Equal(t, "A v B", bet.Title())

	bet.Selections.Items = append(bet.Selections.Items,
		makeOriginal("C v D", "T2", "MATCH_ODDS", 5, 3.0))
	assert.Equal(t, "A v B + 1 other", bet.Title())

	bet.Selections.Items = append(bet.Selections.Items,
		makeOriginal("E v F", "T3", "MATCH_ODDS", 5, 3.0))
	assert.Equal(t, "A v B + 2 others", bet.Title())

	assert.Equal(t, "No selections", domain.Bet{}.Title())
}

func TestBet_ProfitFromBalanceDelta(t *testing.T) {
	bet := makeFinishedBet("b1", 20, 100, 118.5)
	assert.InDelta(t, 18.5, bet.Profit(), 0.001)
	assert.True(t, bet.IsWin())
}

func TestBet_ProfitFallsBackToRealizedReturns(t *testing.T) {
	bet := domain.Bet{
		Status:          domain.StatusFinished,
		RealizedReturns: 25,
		Selections: &domain.BetSelections{
			Items: []domain.BetSelectionItem{makeOriginal("A v B", "T1", "MATCH_ODDS", 30, 2.0)},
			Wager: domain.BetWager{Stake: 30},
		},
	}
	assert.InDelta(t, -5.0, bet.Profit(), 0.001)
	assert.False(t, bet.IsWin())
}

func TestBet_ProfitZeroWhileUnfinished(t *testing.T) {
	bet := domain.Bet{Status: domain.StatusPlaced, RealizedReturns: 50}
	assert.Zero(t, bet.Profit())
}

func TestBet_DisplayPot(t *testing.T) {
	pending := domain.Bet{
		Status: domain.StatusAnalyzed,
		Selections: &domain.BetSelections{
			Wager: domain.BetWager{PotentialReturns: 61},
		},
	}
	assert.InDelta(t, 61.0, pending.DisplayPot(), 0.001)

	finished := makeFinishedBet("b1", 10, 100, 110)
	assert.InDelta(t, 110.0, finished.DisplayPot(), 0.001)
}

func TestBet_EventNamesDeduplicated(t *testing.T) {
	bet := domain.Bet{Selections: &domain.BetSelections{Items: []domain.BetSelectionItem{
		makeOriginal("A v B", "T1", "MATCH_ODDS", 10, 2.0),
		makeOriginal("A v B", "T1", "OVER_UNDER_25", 5, 1.9),
		makeOriginal("C v D", "T2", "MATCH_ODDS", 5, 3.0),
	}}}
	assert.Equal(t, []string{"A v B", "C v D"}, bet.EventNames())
}

func TestBet_IsPendingReview(t *testing.T) {
	assert.True(t, domain.Bet{Status: domain.StatusAnalyzed}.IsPendingReview())
	assert.False(t, domain.Bet{Status: domain.StatusPlaced}.IsPendingReview())
}

// --- wire decoding ---

func TestTimestamp_AllShapes(t *testing.T) {
	cases := map[string]string{
		"rfc3339":        `"2026-08-30T15:00:00Z"`,
		"epoch":          `1787410800`,
		"seconds":        `{"seconds": 1787410800}`,
		"privateSeconds": `{"_seconds": 1787410800}`,
	}

	for name, raw := range cases {
		var ts domain.Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), name)
		assert.False(t, ts.IsZero(), name)
	}

	var ts domain.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"not a date"`), &ts))
	assert.True(t, ts.IsZero())
}

func TestFlexID_StringAndNumber(t *testing.T) {
	var s domain.FlexID
	require.NoError(t, json.Unmarshal([]byte(`"abc-1"`), &s))
	assert.Equal(t, "abc-1", s.String())

	var n domain.FlexID
	require.NoError(t, json.Unmarshal([]byte(`47972`), &n))
	assert.Equal(t, "47972", n.String())

	// Numeric ids go back out as numbers.
	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `47972`, string(out))

	out, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"abc-1"`, string(out))
}

func TestBet_DecodeFullDocument(t *testing.T) {
	raw := `{
		"status": "analyzed",
		"created_at": {"_seconds": 1787410800},
		"target_date": "2026-08-30",
		"balance": {"starting": 100},
		"events": [{"name": "A v B", "time": "2026-08-30T15:00:00Z", "competition": {"name": "PL"}, "provider_event_id": "ev1"}],
		"selections": {
			"items": [
				{"event": {"event_name": "A v B", "event_time": "2026-08-30T15:00:00Z", "competition_name": "PL"}, "market": "MATCH_ODDS", "odds": 2.5, "stake": 10, "selection_id": 123}
			],
			"wager": {"odds": 2.5, "stake": 10, "potential_returns": 25}
		}
	}`

	var bet domain.Bet
	require.NoError(t, json.Unmarshal([]byte(raw), &bet))
	bet.ID = "bet-1"

	assert.True(t, bet.IsPendingReview())
	assert.InDelta(t, 100.0, bet.StartingBalance(), 0.001)
	require.Len(t, bet.Items(), 1)
	assert.Equal(t, "A v B", bet.Items()[0].Event.Name)
	assert.Equal(t, 2026, bet.CreatedAt.Year())

	ev, ok := bet.FindEvent("A v B")
	require.True(t, ok)
	assert.Equal(t, "ev1", ev.ProviderEventID)
}
