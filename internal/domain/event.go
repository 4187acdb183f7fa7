package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Placeholders used when the backend sends partial event data.
// The review UI must keep rendering whatever arrives, so missing fields
// degrade to constants instead of errors.
const (
	UnknownEventName       = "Unknown Event"
	UnknownCompetitionName = "Unknown"
)

// Competition is the competition a fixture belongs to.
type Competition struct {
	Name string `json:"name"`
}

// EventInfo is the canonical fixture reference carried by every selection.
// Older backend payloads encode it as a bare string or as a flat
// {event_name, event_time, competition_name} record; UnmarshalJSON is the
// single seam that folds all of those into this shape.
type EventInfo struct {
	Name        string      `json:"name"`
	Time        string      `json:"time"`
	Competition Competition `json:"competition"`
}

// rawEvent acepta todas las formas históricas del campo `event`.
type rawEvent struct {
	Name            string       `json:"name"`
	Time            string       `json:"time"`
	Competition     *Competition `json:"competition"`
	EventName       string       `json:"event_name"`
	EventTime       string       `json:"event_time"`
	CompetitionName string       `json:"competition_name"`
}

// UnmarshalJSON accepts the canonical object, the legacy flat object, a bare
// string (name only) and null. It never fails: malformed input degrades to
// the placeholder constants.
func (e *EventInfo) UnmarshalJSON(data []byte) error {
	*e = ParseEventInfo(data)
	return nil
}

// ParseEventInfo normalizes any historical wire shape of an event into a
// fully populated EventInfo.
func ParseEventInfo(data []byte) EventInfo {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return normalizeEvent(EventInfo{})
	}

	if trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return normalizeEvent(EventInfo{})
		}
		return normalizeEvent(EventInfo{Name: name})
	}

	var raw rawEvent
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return normalizeEvent(EventInfo{})
	}
	return raw.toEventInfo()
}

func (r rawEvent) toEventInfo() EventInfo {
	e := EventInfo{
		Name: firstNonEmpty(r.EventName, r.Name),
		Time: firstNonEmpty(r.EventTime, r.Time),
	}
	if r.CompetitionName != "" {
		e.Competition.Name = r.CompetitionName
	} else if r.Competition != nil {
		e.Competition.Name = r.Competition.Name
	}
	return normalizeEvent(e)
}

func normalizeEvent(e EventInfo) EventInfo {
	if e.Name == "" {
		e.Name = UnknownEventName
	}
	if e.Competition.Name == "" {
		e.Competition.Name = UnknownCompetitionName
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// EventIdentity selects how two selections are decided to belong to the
// same fixture for grouping.
type EventIdentity int

const (
	// IdentityNameTime keys a fixture by name + time. This is the historical
	// scheme: two fixtures sharing name and kickoff time across different
	// competitions would merge incorrectly. Kept as the default pending a
	// product decision; see IdentityNameTimeCompetition.
	IdentityNameTime EventIdentity = iota

	// IdentityNameTimeCompetition additionally keys by competition name.
	IdentityNameTimeCompetition
)

// ParseEventIdentity maps the config string to an EventIdentity.
// Unknown values fall back to the name_time default.
func ParseEventIdentity(s string) EventIdentity {
	if strings.EqualFold(s, "name_time_competition") {
		return IdentityNameTimeCompetition
	}
	return IdentityNameTime
}

// Key derives the group-bucket key for an event. Pure, deterministic,
// case-sensitive string equality.
func (id EventIdentity) Key(e EventInfo) string {
	e = normalizeEvent(e)
	if id == IdentityNameTimeCompetition {
		return e.Name + "_" + e.Time + "_" + e.Competition.Name
	}
	return e.Name + "_" + e.Time
}

// EventID derives the default identity key (name + "_" + time) for an event.
func EventID(e EventInfo) string {
	return IdentityNameTime.Key(e)
}

// SelectionOption is one pickable outcome within a market.
type SelectionOption struct {
	Name        string  `json:"name"`
	SelectionID FlexID  `json:"selection_id"`
	Odds        float64 `json:"odds"`
}

// MarketOption is one market offered for an event, with its outcomes.
type MarketOption struct {
	Name     string            `json:"name"`
	MarketID string            `json:"market_id"`
	Options  []SelectionOption `json:"options,omitempty"`
}

// BetEvent is a full fixture with the markets available on it.
type BetEvent struct {
	EventInfo
	ProviderEventID string         `json:"provider_event_id,omitempty"`
	Options         []MarketOption `json:"options,omitempty"`
}

// UnmarshalJSON tolerates the same legacy shapes as EventInfo.
func (e *BetEvent) UnmarshalJSON(data []byte) error {
	e.EventInfo = ParseEventInfo(data)

	var extra struct {
		ProviderEventID string         `json:"provider_event_id"`
		Options         []MarketOption `json:"options"`
	}
	if err := json.Unmarshal(data, &extra); err == nil {
		e.ProviderEventID = extra.ProviderEventID
		e.Options = extra.Options
	}
	return nil
}

// MarketCategory buckets market type codes for display in the add-market flow.
type MarketCategory string

const (
	CategoryMatchOdds      MarketCategory = "Match Odds"
	CategoryDoubleOutcomes MarketCategory = "Double Outcomes"
	CategoryCards          MarketCategory = "Cards"
	CategoryCorners        MarketCategory = "Corners"
	CategoryGoals          MarketCategory = "Goals"
	CategoryOther          MarketCategory = "Other"
)

// marketCategoryPatterns maps each category to the type-code substrings that
// select it. Card markets are matched first because OVER_UNDER_*_CARDS codes
// would otherwise land in Goals.
var marketCategoryPatterns = map[MarketCategory][]string{
	CategoryMatchOdds:      {"MATCH_ODDS", "MONEY_LINE"},
	CategoryDoubleOutcomes: {"DOUBLE_CHANCE"},
	CategoryGoals: {
		"OVER_UNDER_05", "OVER_UNDER_15", "OVER_UNDER_25",
		"OVER_UNDER_35", "OVER_UNDER_45", "OVER_UNDER_55", "OVER_UNDER_65",
		"BOTH_TEAMS_TO_SCORE", "TOTAL_POINTS",
	},
	CategoryCards:   {"TOTAL_CARDS", "BOOKING_POINTS"},
	CategoryCorners: {"CORNER_KICKS", "CORNER_MATCH_BET"},
}

// marketCategoryOrder is the fixed display order.
var marketCategoryOrder = []MarketCategory{
	CategoryMatchOdds, CategoryDoubleOutcomes, CategoryCards,
	CategoryCorners, CategoryGoals, CategoryOther,
}

// CategorizeMarket classifies a market type code into its display category.
func CategorizeMarket(name string) MarketCategory {
	if strings.Contains(name, "CARD") {
		return CategoryCards
	}
	for _, cat := range marketCategoryOrder {
		for _, pattern := range marketCategoryPatterns[cat] {
			if strings.Contains(name, pattern) {
				return cat
			}
		}
	}
	return CategoryOther
}

// MarketCategoryGroup is one display bucket of market options.
type MarketCategoryGroup struct {
	Category MarketCategory
	Markets  []MarketOption
}

// GroupMarketsByCategory buckets markets into the fixed category order,
// sorting alphabetically within each bucket. Empty buckets are kept so the
// caller renders a stable set of sections.
func GroupMarketsByCategory(markets []MarketOption) []MarketCategoryGroup {
	byCategory := make(map[MarketCategory][]MarketOption, len(marketCategoryOrder))
	for _, m := range markets {
		cat := CategorizeMarket(m.Name)
		byCategory[cat] = append(byCategory[cat], m)
	}

	groups := make([]MarketCategoryGroup, 0, len(marketCategoryOrder))
	for _, cat := range marketCategoryOrder {
		list := byCategory[cat]
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		groups = append(groups, MarketCategoryGroup{Category: cat, Markets: list})
	}
	return groups
}
