// Package feed implementa el port Feed sobre el stream websocket del
// backend.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

// Colecciones conocidas del stream.
const (
	collectionBets    = "bet_slips"
	collectionWallets = "wallets"
)

// message es el frame del stream: un cambio de documento por mensaje.
type message struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Doc        json.RawMessage `json:"doc"`
}

// WebSocket implementa ports.Feed. Una conexión, un canal de salida;
// cuando la conexión se pierde el canal se cierra y el caller decide.
// No hay reconexión automática.
type WebSocket struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ ports.Feed = (*WebSocket)(nil)

// NewWebSocket crea el adapter contra la URL dada (ws:// o wss://).
func NewWebSocket(url string) *WebSocket {
	return &WebSocket{
		url:    url,
		dialer: websocket.DefaultDialer,
	}
}

// Subscribe conecta y arranca el read loop. El canal devuelto se cierra
// al cancelar el contexto o al perder la conexión.
func (w *WebSocket) Subscribe(ctx context.Context) (<-chan ports.FeedUpdate, error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed.Subscribe: dial %s: %w", w.url, err)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	updates := make(chan ports.FeedUpdate, 16)

	// ReadMessage no acepta contexto; cerrar la conexión lo desbloquea.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(updates)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("feed connection lost", "error", err)
				}
				return
			}

			update, ok := decode(data)
			if !ok {
				continue
			}

			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

// Close cierra la conexión si está abierta.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

// decode convierte un frame en un FeedUpdate. Mensajes de colecciones
// desconocidas o con documentos malformados se descartan con un warning,
// nunca tiran la suscripción.
func decode(data []byte) (ports.FeedUpdate, bool) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("undecodable feed frame", "error", err)
		return ports.FeedUpdate{}, false
	}

	update := ports.FeedUpdate{Collection: msg.Collection, ID: msg.ID}

	switch msg.Collection {
	case collectionBets:
		var bet domain.Bet
		if err := json.Unmarshal(msg.Doc, &bet); err != nil {
			slog.Warn("undecodable bet doc", "id", msg.ID, "error", err)
			return ports.FeedUpdate{}, false
		}
		bet.ID = msg.ID
		update.Bet = &bet
	case collectionWallets:
		var wallet domain.Wallet
		if err := json.Unmarshal(msg.Doc, &wallet); err != nil {
			slog.Warn("undecodable wallet doc", "id", msg.ID, "error", err)
			return ports.FeedUpdate{}, false
		}
		update.Wallet = &wallet
	default:
		return ports.FeedUpdate{}, false
	}

	return update, true
}
