package ports

import (
	"context"

	"github.com/alejandrodnm/betdesk/internal/domain"
)

// Backend invoca las funciones HTTP del backend de apuestas. Cada método
// corresponde a una callable function; el backend es quien ejecuta la
// colocación real, aquí solo se solicita.
type Backend interface {
	// ApproveBetIntent envía la aprobación de un bet analizado junto con
	// la lista final de selecciones. El backend pasa el bet a "approved"
	// y lo encola para colocación.
	ApproveBetIntent(ctx context.Context, betID string, selections []domain.BetSelectionItem) error

	// TriggerAnalysis lanza el ciclo de análisis diario para la fecha
	// dada (YYYY-MM-DD, vacío = hoy).
	TriggerAnalysis(ctx context.Context, targetDate string) error

	// FetchEventMarkets devuelve el catálogo de mercados disponibles
	// para un evento del proveedor, para el flujo de añadir selecciones.
	FetchEventMarkets(ctx context.Context, providerEventID string) ([]domain.MarketOption, error)

	// SaveSettings persiste la configuración del agente.
	SaveSettings(ctx context.Context, settings domain.BettingSettings) error

	// FetchNotifications devuelve las notificaciones del usuario,
	// más recientes primero.
	FetchNotifications(ctx context.Context) ([]domain.Notification, error)
}
