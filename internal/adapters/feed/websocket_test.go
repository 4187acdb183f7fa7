package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betdesk/internal/adapters/feed"
)

var upgrader = websocket.Upgrader{}

// newFeedServer levanta un servidor websocket que manda los frames dados
// y luego se queda abierto hasta que el cliente cierra.
func newFeedServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		// Mantener la conexión abierta hasta que el cliente corte.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscribe_DecodesBetUpdates(t *testing.T) {
	srv := newFeedServer(t,
		`{"collection": "bet_slips", "id": "bet-1", "doc": {"status": "analyzed", "balance": {"starting": 100}}}`,
	)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := feed.NewWebSocket(wsURL(srv))
	updates, err := ws.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case update := <-updates:
		assert.Equal(t, "bet_slips", update.Collection)
		require.NotNil(t, update.Bet)
		assert.Equal(t, "bet-1", update.Bet.ID)
		assert.True(t, update.Bet.IsPendingReview())
		assert.Nil(t, update.Wallet)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
}

func TestSubscribe_DecodesWalletUpdates(t *testing.T) {
	srv := newFeedServer(t,
		`{"collection": "wallets", "id": "main", "doc": {"amount": 250.5, "currency": "GBP"}}`,
	)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := feed.NewWebSocket(wsURL(srv))
	updates, err := ws.Subscribe(ctx)
	require.NoError(t, err)

	update := <-updates
	require.NotNil(t, update.Wallet)
	assert.InDelta(t, 250.5, update.Wallet.Amount, 0.001)
}

func TestSubscribe_SkipsMalformedFrames(t *testing.T) {
	srv := newFeedServer(t,
		`not json at all`,
		`{"collection": "unknown_collection", "id": "x", "doc": {}}`,
		`{"collection": "bet_slips", "id": "bet-2", "doc": {"status": "placed"}}`,
	)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := feed.NewWebSocket(wsURL(srv))
	updates, err := ws.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case update := <-updates:
		require.NotNil(t, update.Bet, "bad frames are skipped, not fatal")
		assert.Equal(t, "bet-2", update.Bet.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
}

func TestSubscribe_ClosesChannelOnCancel(t *testing.T) {
	srv := newFeedServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ws := feed.NewWebSocket(wsURL(srv))
	updates, err := ws.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-updates:
		assert.False(t, open, "channel closes on cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestSubscribe_DialFailure(t *testing.T) {
	ws := feed.NewWebSocket("ws://127.0.0.1:1/stream")
	_, err := ws.Subscribe(context.Background())
	assert.Error(t, err)
}
