package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alejandrodnm/betdesk/config"
	"github.com/alejandrodnm/betdesk/internal/application/mirror"
	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
	"github.com/alejandrodnm/betdesk/internal/review"
)

const historyLimit = 50

// app agrupa las dependencias ya construidas para los subcomandos.
type app struct {
	cfg     *config.Config
	store   ports.BetStore
	backend ports.Backend
	console ports.Notifier
}

// runWatch espeja el feed en el store local hasta que se interrumpe.
// Cada bet que llega en estado analyzed se anuncia para revisión.
func (a *app) runWatch(ctx context.Context, f ports.Feed) error {
	m := mirror.New(f, a.store)
	m.OnPendingReview = func(betID string) {
		slog.Info("bet pending review", "id", betID,
			"hint", fmt.Sprintf("run: betdesk -review %s", betID))
	}

	err := m.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reviewEdits son los edits de slip pedidos por la línea de comandos.
type reviewEdits struct {
	stakes   []string
	removals []string
	adds     []string
	approve  bool
}

// runReview abre una sesión de revisión, aplica los edits de la línea de
// comandos, pinta el slip efectivo y opcionalmente aprueba.
func (a *app) runReview(ctx context.Context, betID string, edits reviewEdits) error {
	bet, err := a.store.GetBet(ctx, betID)
	if err != nil {
		return err
	}
	if !bet.IsPendingReview() {
		slog.Warn("bet is not pending review", "id", betID, "status", bet.Status)
	}

	session := review.NewSession(bet, a.backend, review.Options{
		DefaultAddedStake: a.cfg.Review.DefaultAddedStake,
		EventIdentity:     domain.ParseEventIdentity(a.cfg.Review.EventIdentity),
		ApproveTimeout:    a.cfg.ApproveTimeout(),
	})

	// Las adiciones van primero: los índices de -remove se interpretan
	// sobre el slip que el usuario vio, originales y añadidos incluidos.
	for _, add := range edits.adds {
		if err := applyAdd(session.Ledger(), bet, add); err != nil {
			return err
		}
	}

	for _, edit := range edits.stakes {
		ref, raw, err := parseStakeEdit(edit)
		if err != nil {
			return err
		}
		stored := session.Ledger().UpdateStake(ref, raw)
		slog.Debug("stake updated", "ref", ref.String(), "stake", stored)
	}

	for _, r := range edits.removals {
		index, err := strconv.Atoi(r)
		if err != nil {
			return fmt.Errorf("bad -remove value %q", r)
		}
		if err := session.Ledger().RemoveSelection(index); err != nil {
			return err
		}
	}

	if err := a.console.ShowReview(bet, session.Groups(), session.Totals()); err != nil {
		return err
	}

	if !edits.approve {
		return nil
	}

	if err := session.Approve(ctx); err != nil {
		return err
	}
	slog.Info("bet approved", "id", betID)
	return nil
}

// parseStakeEdit separa "original_0=25.5" en ref y valor crudo. El valor
// se pasa tal cual al ledger, que es quien decide qué stakes son válidos.
func parseStakeEdit(edit string) (domain.SelectionRef, string, error) {
	for i := 0; i < len(edit); i++ {
		if edit[i] == '=' {
			ref, err := domain.ParseSelectionRef(edit[:i])
			if err != nil {
				return domain.SelectionRef{}, "", fmt.Errorf("bad -stake value %q: %w", edit, err)
			}
			return ref, edit[i+1:], nil
		}
	}
	return domain.SelectionRef{}, "", fmt.Errorf("bad -stake value %q: want ref=value", edit)
}

// applyAdd resuelve "event|market|selection" contra el catálogo del bet y
// añade la selección al ledger.
func applyAdd(ledger *review.Ledger, bet domain.Bet, arg string) error {
	parts := strings.Split(arg, "|")
	if len(parts) != 3 {
		return fmt.Errorf("bad -add value %q: want event|market|selection", arg)
	}
	eventName, marketName, selectionName := parts[0], parts[1], parts[2]

	event, ok := bet.FindEvent(eventName)
	if !ok {
		return fmt.Errorf("-add: unknown event %q", eventName)
	}
	for _, market := range event.Options {
		if market.Name != marketName {
			continue
		}
		for _, sel := range market.Options {
			if sel.Name != selectionName {
				continue
			}
			ref := ledger.AddMarketSelection(eventName, market, sel)
			slog.Debug("selection added", "ref", ref.String(), "selection", sel.Name)
			return nil
		}
		return fmt.Errorf("-add: market %q has no selection %q", marketName, selectionName)
	}
	return fmt.Errorf("-add: event %q has no market %q", eventName, marketName)
}

// runMarkets pinta el catálogo de mercados de un evento del bet, agrupado
// por categoría, para elegir qué añadir.
func (a *app) runMarkets(ctx context.Context, betID, eventName string) error {
	bet, err := a.store.GetBet(ctx, betID)
	if err != nil {
		return err
	}
	event, ok := bet.FindEvent(eventName)
	if !ok {
		return fmt.Errorf("unknown event %q in bet %s", eventName, betID)
	}

	markets := event.Options
	if event.ProviderEventID != "" {
		fetched, err := a.backend.FetchEventMarkets(ctx, event.ProviderEventID)
		if err != nil {
			slog.Warn("falling back to the bet's own catalogue", "err", err)
		} else {
			markets = fetched
		}
	}

	return a.console.ShowMarkets(eventName, domain.GroupMarketsByCategory(markets))
}

func (a *app) runHistory(ctx context.Context) error {
	bets, err := a.store.ListBets(ctx, historyLimit)
	if err != nil {
		return err
	}
	return a.console.ShowHistory(bets)
}

func (a *app) runDashboard(ctx context.Context) error {
	bets, err := a.store.ListBets(ctx, historyLimit)
	if err != nil {
		return err
	}
	wallet, err := a.store.LatestWallet(ctx)
	if err != nil {
		return err
	}
	return a.console.ShowDashboard(domain.ComputeDashboardStats(bets), wallet)
}

func (a *app) runNotifications(ctx context.Context) error {
	notes, err := a.backend.FetchNotifications(ctx)
	if err != nil {
		return err
	}
	return a.console.ShowNotifications(notes)
}

func (a *app) runAnalyze(ctx context.Context, date string) error {
	if err := a.backend.TriggerAnalysis(ctx, date); err != nil {
		return err
	}
	slog.Info("analysis triggered", "date", date)
	return nil
}

// runSetRisk guarda la configuración del agente con el risk appetite dado
// sobre los defaults del backend.
func (a *app) runSetRisk(ctx context.Context, risk float64) error {
	settings := domain.DefaultSettings()
	settings.RiskAppetite = risk

	if err := a.backend.SaveSettings(ctx, settings); err != nil {
		return err
	}
	slog.Info("settings saved", "risk", risk, "label", domain.RiskAppetiteLabel(risk))
	return nil
}
