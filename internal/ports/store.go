package ports

import (
	"context"

	"github.com/alejandrodnm/betdesk/internal/domain"
)

// BetStore persiste el espejo local de los documentos del store en tiempo
// real, para poder listar y revisar sin conexión al feed.
type BetStore interface {
	// UpsertBet inserta o actualiza un bet por id, conservando la fecha
	// de primera aparición.
	UpsertBet(ctx context.Context, bet domain.Bet) error

	// GetBet devuelve un bet por id.
	GetBet(ctx context.Context, id string) (domain.Bet, error)

	// ListBets devuelve hasta limit bets, más recientes primero.
	ListBets(ctx context.Context, limit int) ([]domain.Bet, error)

	// ListByStatus devuelve los bets con el estado dado, más recientes
	// primero.
	ListByStatus(ctx context.Context, status domain.BetStatus, limit int) ([]domain.Bet, error)

	// SaveWallet guarda el último snapshot del saldo.
	SaveWallet(ctx context.Context, w domain.Wallet) error

	// LatestWallet devuelve el último snapshot del saldo guardado.
	LatestWallet(ctx context.Context) (domain.Wallet, error)

	Close() error
}
