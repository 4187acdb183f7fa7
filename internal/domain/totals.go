package domain

import "sort"

// BetTotals aggregates effective stakes and returns across a slip.
// No rounding is applied here; currency formatting happens at render time.
type BetTotals struct {
	TotalStake   float64
	TotalReturns float64
}

// StakeResolver decides the currently effective stake for a slip row:
// an override when the user edited it, else the stake on the item.
type StakeResolver func(ref SelectionRef, itemStake float64) float64

// CalculateBetTotals sums effective stakes and returns over all groups.
// A nil resolver uses the stakes as grouped. Both sums are linear, so
// totals over disjoint group sets are additive.
func CalculateBetTotals(groups []SelectionEventGroup, effectiveStake StakeResolver) BetTotals {
	var totals BetTotals
	for _, group := range groups {
		for _, market := range group.Markets {
			stake := market.Stake
			if effectiveStake != nil {
				stake = effectiveStake(market.Ref, market.Stake)
			}
			totals.TotalStake += stake
			totals.TotalReturns += stake * market.Odds
		}
	}
	return totals
}

// DashboardStats are the headline numbers for the dashboard view.
type DashboardStats struct {
	TotalProfit    float64
	WinRate        float64 // percentage over finished bets
	CurrentBalance float64
	Wins           int
	FinishedBets   int
	RecentProfit   float64 // profit of the most recently placed finished bet
}

// ComputeDashboardStats derives dashboard numbers from the bet list.
// Bets are expected newest-first (the store's list order); the current
// balance is read off the most recent bet's balance snapshot.
func ComputeDashboardStats(bets []Bet) DashboardStats {
	var stats DashboardStats

	var finished []Bet
	for _, b := range bets {
		if b.IsFinished() {
			finished = append(finished, b)
		}
	}
	stats.FinishedBets = len(finished)

	for _, b := range finished {
		if len(b.SettlementResults) == 0 {
			continue
		}
		var realized float64
		for _, res := range b.SettlementResults {
			realized += res.Profit
		}
		stats.TotalProfit += realized
		if realized > 0 {
			stats.Wins++
		}
	}

	if len(finished) > 0 {
		stats.WinRate = float64(stats.Wins) / float64(len(finished)) * 100
	}

	if len(bets) > 0 {
		latest := bets[0]
		if latest.Balance != nil {
			if latest.Balance.Ending != nil {
				stats.CurrentBalance = *latest.Balance.Ending
			} else {
				stats.CurrentBalance = latest.Balance.Starting
			}
		}
	}

	if len(finished) > 0 {
		sort.SliceStable(finished, func(i, j int) bool {
			return finished[i].PlacedAt.After(finished[j].PlacedAt.Time)
		})
		last := finished[0]
		if last.Balance != nil && last.Balance.Ending != nil {
			stats.RecentProfit = *last.Balance.Ending - last.Balance.Starting
		} else {
			stats.RecentProfit = last.RealizedReturns
		}
	}

	return stats
}
