package ports

import (
	"context"

	"github.com/alejandrodnm/betdesk/internal/domain"
)

// FeedUpdate es un cambio de documento empujado por el feed en tiempo
// real. Solo uno de Bet o Wallet viene poblado según la colección.
type FeedUpdate struct {
	Collection string
	ID         string
	Bet        *domain.Bet
	Wallet     *domain.Wallet
}

// Feed entrega actualizaciones de documentos en tiempo real.
type Feed interface {
	// Subscribe abre la suscripción y devuelve el canal de updates.
	// El canal se cierra cuando el contexto se cancela o la conexión
	// se pierde; no hay reconexión automática.
	Subscribe(ctx context.Context) (<-chan FeedUpdate, error)

	Close() error
}
