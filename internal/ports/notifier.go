package ports

import "github.com/alejandrodnm/betdesk/internal/domain"

// Notifier presenta el estado al usuario. La implementación por defecto
// es la consola; los tipos de dominio llegan ya proyectados.
type Notifier interface {
	// ShowReview pinta el slip agrupado por evento con los totales
	// efectivos.
	ShowReview(bet domain.Bet, groups []domain.SelectionEventGroup, totals domain.BetTotals) error

	// ShowHistory pinta la lista de bets, más recientes primero.
	ShowHistory(bets []domain.Bet) error

	// ShowDashboard pinta las métricas agregadas y el saldo actual.
	ShowDashboard(stats domain.DashboardStats, wallet domain.Wallet) error

	// ShowMarkets pinta el catálogo de mercados de un evento agrupado
	// por categoría.
	ShowMarkets(eventName string, groups []domain.MarketCategoryGroup) error

	// ShowNotifications pinta las notificaciones del backend.
	ShowNotifications(notes []domain.Notification) error
}
