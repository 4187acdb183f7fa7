package domain

// BettingSettings is the agent configuration document persisted by the
// backend. Field tags match the backend's constant-style keys.
type BettingSettings struct {
	BankrollPercent  float64 `json:"BANKROLL_PERCENT"`
	MaxBankroll      float64 `json:"MAX_BANKROLL"`
	RiskAppetite     float64 `json:"RISK_APPETITE"`
	UseReliableTeams bool    `json:"USE_RELIABLE_TEAMS"`
	MinStake         float64 `json:"MIN_STAKE"`
	MinProfit        float64 `json:"MIN_PROFIT"`
}

// DefaultSettings mirrors the backend's defaults.
func DefaultSettings() BettingSettings {
	return BettingSettings{
		BankrollPercent:  50,
		MaxBankroll:      5000,
		RiskAppetite:     1.5,
		UseReliableTeams: true,
		MinStake:         1.0,
		MinProfit:        0.02,
	}
}

// RiskAppetiteLabel maps a risk appetite value to its display label.
func RiskAppetiteLabel(value float64) string {
	switch {
	case value <= 1.5:
		return "Very Conservative"
	case value <= 2:
		return "Conservative"
	case value <= 2.5:
		return "Moderate-Low"
	case value <= 3:
		return "Balanced"
	case value <= 3.5:
		return "Moderate-High"
	case value <= 4:
		return "Aggressive"
	default:
		return "Very Aggressive"
	}
}

// Notification is one user-facing message from the backend.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
	Type      string `json:"type,omitempty"` // info | success | warning | error
}
