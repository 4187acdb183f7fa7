// Package backend implementa el port Backend contra las funciones HTTP
// del backend de apuestas.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

const (
	// Las funciones del backend son lentas (el análisis invoca al LLM);
	// el timeout del cliente tiene que cubrir la llamada más larga.
	requestTimeout = 120 * time.Second

	callsPerSec = 5
)

// Client invoca las callable functions del backend: POST {base}/{fn} con
// el payload envuelto en {"data": ...} y la respuesta en {"data"|"error"}.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

var _ ports.Backend = (*Client)(nil)

// NewClient crea un Client contra el base URL dado.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		base:    baseURL,
		limiter: rate.NewLimiter(callsPerSec, 2),
	}
}

// call hace un POST a la función dada. Sin retries: approve_bet_intent no
// es idempotente y un reintento podría duplicar una colocación.
func (c *Client) call(ctx context.Context, fn string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(map[string]any{"data": payload})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", fn, err)
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%s: status %d: %s", fn, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if msg, ok := errorMessage(envelope.Error); ok {
		return fmt.Errorf("%s: %s", fn, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", fn, resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", fn, err)
		}
	}
	return nil
}

// errorMessage extrae el mensaje del campo "error" del envelope. El backend
// lo emite en dos formas: un objeto {"message", "status"} o un string plano.
func errorMessage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var obj struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message, true
		}
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return msg, true
	}
	return string(bytes.TrimSpace(raw)), true
}

// ApproveBetIntent aprueba un bet analizado con sus selecciones finales.
func (c *Client) ApproveBetIntent(ctx context.Context, betID string, selections []domain.BetSelectionItem) error {
	payload := map[string]any{
		"bet_id":     betID,
		"selections": map[string]any{"items": selections},
	}
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.call(ctx, "approve_bet_intent", payload, &result); err != nil {
		return fmt.Errorf("backend.ApproveBetIntent: %w", err)
	}
	if !result.Success && result.Message != "" {
		return fmt.Errorf("backend.ApproveBetIntent: %s", result.Message)
	}
	return nil
}

// TriggerAnalysis lanza el ciclo de análisis para la fecha dada.
func (c *Client) TriggerAnalysis(ctx context.Context, targetDate string) error {
	payload := map[string]any{}
	if targetDate != "" {
		payload["date"] = targetDate
	}
	if err := c.call(ctx, "automated_daily_betting_http", payload, nil); err != nil {
		return fmt.Errorf("backend.TriggerAnalysis: %w", err)
	}
	return nil
}

// FetchEventMarkets devuelve el catálogo de mercados de un evento.
func (c *Client) FetchEventMarkets(ctx context.Context, providerEventID string) ([]domain.MarketOption, error) {
	payload := map[string]any{"provider_event_id": providerEventID}
	var result struct {
		Markets []domain.MarketOption `json:"markets"`
	}
	if err := c.call(ctx, "fetch_event_markets", payload, &result); err != nil {
		return nil, fmt.Errorf("backend.FetchEventMarkets: %w", err)
	}
	return result.Markets, nil
}

// SaveSettings persiste la configuración del agente.
func (c *Client) SaveSettings(ctx context.Context, settings domain.BettingSettings) error {
	if err := c.call(ctx, "save_settings", settings, nil); err != nil {
		return fmt.Errorf("backend.SaveSettings: %w", err)
	}
	return nil
}

// FetchNotifications devuelve las notificaciones del usuario.
func (c *Client) FetchNotifications(ctx context.Context) ([]domain.Notification, error) {
	var result struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := c.call(ctx, "user_notifications", map[string]any{}, &result); err != nil {
		return nil, fmt.Errorf("backend.FetchNotifications: %w", err)
	}
	return result.Notifications, nil
}
