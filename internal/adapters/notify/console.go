// Package notify implementa ports.Notifier sobre la consola.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	currency string
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(currency string) *Console {
	return &Console{out: os.Stdout, currency: currency}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, currency string) *Console {
	return &Console{out: w, currency: currency}
}

// ShowReview pinta el slip agrupado por evento y los totales efectivos.
func (c *Console) ShowReview(bet domain.Bet, groups []domain.SelectionEventGroup, totals domain.BetTotals) error {
	fmt.Fprintf(c.out, "\n=== REVIEW %s — %s [%s] ===\n", bet.ID, bet.Title(), bet.Status)
	if bet.AIReasoning != "" {
		fmt.Fprintf(c.out, "  %s\n", truncate(bet.AIReasoning, 100))
	}
	fmt.Fprintf(c.out, "  Balance: %s\n", c.money(bet.StartingBalance()))

	if len(groups) == 0 {
		fmt.Fprintln(c.out, "\n  (no selections)")
		return nil
	}

	for _, group := range groups {
		when := group.Event.Time
		if parsed, err := time.Parse(time.RFC3339, when); err == nil {
			when = parsed.Format("Mon 02 Jan 15:04")
		}
		fmt.Fprintf(c.out, "\n  %s — %s (%s)\n", group.Event.Name, when, group.Event.Competition.Name)

		table := tablewriter.NewWriter(c.out)
		table.Header("Ref", "Market", "Odds", "Stake", "Returns")
		for _, m := range group.Markets {
			table.Append(
				m.Ref.String(),
				truncate(m.Market, 30),
				fmt.Sprintf("%.2f", m.Odds),
				c.money(m.Stake),
				c.money(m.PotentialReturns),
			)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\n  TOTAL stake: %s  →  returns: %s\n\n",
		c.money(totals.TotalStake), c.money(totals.TotalReturns))
	return nil
}

// ShowHistory pinta la lista de bets, más recientes primero.
func (c *Console) ShowHistory(bets []domain.Bet) error {
	if len(bets) == 0 {
		fmt.Fprintln(c.out, "no bets yet")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Date", "Title", "Status", "Stake", "Pot", "Result")

	for _, bet := range bets {
		date := bet.TargetDate
		if date == "" && !bet.CreatedAt.IsZero() {
			date = bet.CreatedAt.Format("2006-01-02")
		}

		result := "-"
		if bet.IsFinished() {
			if bet.IsWin() {
				result = fmt.Sprintf("WIN %s", c.money(bet.Profit()))
			} else {
				result = fmt.Sprintf("LOSS %s", c.money(bet.Profit()))
			}
		}

		table.Append(
			truncate(bet.ID, 12),
			date,
			truncate(bet.Title(), 35),
			string(bet.Status),
			c.money(bet.Stake()),
			c.money(bet.DisplayPot()),
			result,
		)
	}

	table.Render()
	return nil
}

// ShowDashboard pinta las métricas agregadas en una línea compacta.
func (c *Console) ShowDashboard(stats domain.DashboardStats, wallet domain.Wallet) error {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] balance:%s", now, c.money(stats.CurrentBalance))
	if wallet.Amount > 0 {
		fmt.Fprintf(&sb, " wallet:%s", c.money(wallet.Amount))
	}
	fmt.Fprintf(&sb, " profit:%s win:%d/%d (%.0f%%) last:%s",
		c.money(stats.TotalProfit), stats.Wins, stats.FinishedBets,
		stats.WinRate, c.money(stats.RecentProfit))

	fmt.Fprintln(c.out, sb.String())
	return nil
}

// ShowMarkets pinta el catálogo de mercados de un evento agrupado por
// categoría, con las opciones y cuotas de cada mercado.
func (c *Console) ShowMarkets(eventName string, groups []domain.MarketCategoryGroup) error {
	fmt.Fprintf(c.out, "\n=== MARKETS — %s ===\n", eventName)

	empty := true
	for _, group := range groups {
		if len(group.Markets) == 0 {
			continue
		}
		empty = false

		fmt.Fprintf(c.out, "\n  [%s]\n", group.Category)
		for _, market := range group.Markets {
			fmt.Fprintf(c.out, "    %s\n", market.Name)
			for _, opt := range market.Options {
				fmt.Fprintf(c.out, "      - %s @ %.2f\n", opt.Name, opt.Odds)
			}
		}
	}

	if empty {
		fmt.Fprintln(c.out, "  (no markets available)")
	}
	return nil
}

// ShowNotifications pinta las notificaciones del backend.
func (c *Console) ShowNotifications(notes []domain.Notification) error {
	if len(notes) == 0 {
		fmt.Fprintln(c.out, "no notifications")
		return nil
	}

	for _, n := range notes {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s [%s] %s — %s\n", marker, n.Type, n.Title, truncate(n.Message, 80))
	}
	return nil
}

// money formatea un importe con el símbolo de la moneda configurada.
func (c *Console) money(v float64) string {
	return fmt.Sprintf("%s%.2f", currencySymbol(c.currency), v)
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "GBP":
		return "£"
	case "EUR":
		return "€"
	case "USD":
		return "$"
	default:
		return code + " "
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
