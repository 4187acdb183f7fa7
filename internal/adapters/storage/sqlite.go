// Package storage implementa ports.BetStore sobre SQLite.
package storage

// sqlite.go — espejo local del store en tiempo real.
//
// Estrategia:
//   - `bets`: UNA fila por documento (UPSERT), con el documento completo
//     como JSON y las columnas consultables (status, target_date) al lado.
//     first_seen se conserva en el upsert; last_seen se actualiza siempre.
//   - `wallet`: una única fila con el último snapshot del saldo.
//   - Prune automático al arrancar: bets terminados (finished/failed) con
//     más de 90 días sin actualizarse.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/betdesk/internal/domain"
	"github.com/alejandrodnm/betdesk/internal/ports"
)

const schema = `
-- Una fila por bet, el documento completo en doc
CREATE TABLE IF NOT EXISTS bets (
    id          TEXT PRIMARY KEY,
    status      TEXT NOT NULL,
    target_date TEXT,
    created_at  DATETIME,
    doc         TEXT NOT NULL,
    first_seen  DATETIME NOT NULL,
    last_seen   DATETIME NOT NULL
);

-- Último snapshot del saldo, una única fila
CREATE TABLE IF NOT EXISTS wallet (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    amount     REAL NOT NULL,
    currency   TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_status  ON bets(status);
CREATE INDEX IF NOT EXISTS idx_bets_created ON bets(created_at DESC);
`

// retentionFinished: bets terminados sin actualizar en 90 días se purgan.
const retentionFinished = 90 * 24 * time.Hour

// SQLiteStore implementa ports.BetStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.BetStore = (*SQLiteStore)(nil)

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia bets antiguos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// UpsertBet inserta o actualiza un bet. first_seen solo se escribe la
// primera vez; todo lo demás refleja el último documento recibido.
func (s *SQLiteStore) UpsertBet(ctx context.Context, bet domain.Bet) error {
	if bet.ID == "" {
		return fmt.Errorf("storage.UpsertBet: bet without id")
	}

	doc, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("storage.UpsertBet: marshal %s: %w", bet.ID, err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bets (id, status, target_date, created_at, doc, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status      = excluded.status,
			target_date = excluded.target_date,
			created_at  = excluded.created_at,
			doc         = excluded.doc,
			last_seen   = excluded.last_seen`,
		bet.ID, string(bet.Status), bet.TargetDate, bet.CreatedAt.Time, string(doc), now, now,
	)
	if err != nil {
		return fmt.Errorf("storage.UpsertBet: upsert %s: %w", bet.ID, err)
	}
	return nil
}

// GetBet devuelve un bet por id.
func (s *SQLiteStore) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM bets WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return domain.Bet{}, fmt.Errorf("storage.GetBet: bet %q not found", id)
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("storage.GetBet: %s: %w", id, err)
	}
	return decodeBet(id, doc)
}

// ListBets devuelve hasta limit bets, más recientes primero.
func (s *SQLiteStore) ListBets(ctx context.Context, limit int) ([]domain.Bet, error) {
	return s.queryBets(ctx, `
		SELECT id, doc FROM bets
		ORDER BY created_at DESC, first_seen DESC
		LIMIT ?`, limit)
}

// ListByStatus devuelve los bets con el estado dado, más recientes primero.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status domain.BetStatus, limit int) ([]domain.Bet, error) {
	return s.queryBets(ctx, `
		SELECT id, doc FROM bets
		WHERE status = ?
		ORDER BY created_at DESC, first_seen DESC
		LIMIT ?`, string(status), limit)
}

// SaveWallet guarda el último snapshot del saldo.
func (s *SQLiteStore) SaveWallet(ctx context.Context, w domain.Wallet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallet (id, amount, currency, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount     = excluded.amount,
			currency   = excluded.currency,
			updated_at = excluded.updated_at`,
		w.Amount, w.Currency, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveWallet: %w", err)
	}
	return nil
}

// LatestWallet devuelve el último snapshot guardado; Wallet{} si no hay.
func (s *SQLiteStore) LatestWallet(ctx context.Context) (domain.Wallet, error) {
	var w domain.Wallet
	err := s.db.QueryRowContext(ctx, `SELECT amount, currency FROM wallet WHERE id = 1`).
		Scan(&w.Amount, &w.Currency)
	if err == sql.ErrNoRows {
		return domain.Wallet{}, nil
	}
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("storage.LatestWallet: %w", err)
	}
	return w, nil
}

// Close cierra la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryBets(ctx context.Context, query string, args ...any) ([]domain.Bet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.queryBets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("storage.queryBets: scan: %w", err)
		}
		bet, err := decodeBet(id, doc)
		if err != nil {
			slog.Warn("skipping undecodable bet row", "id", id, "error", err)
			continue
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func decodeBet(id, doc string) (domain.Bet, error) {
	var bet domain.Bet
	if err := json.Unmarshal([]byte(doc), &bet); err != nil {
		return domain.Bet{}, fmt.Errorf("storage.decodeBet: %s: %w", id, err)
	}
	bet.ID = id
	return bet, nil
}

// pruneOld borra bets terminados que llevan tiempo sin actualizarse.
// Best effort: un fallo aquí no impide arrancar.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionFinished)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bets WHERE status IN ('finished', 'failed') AND last_seen < ?`, cutoff)
	if err != nil {
		slog.Warn("prune old bets failed", "error", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("pruned old bets", "count", n)
	}
}
