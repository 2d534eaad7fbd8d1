// Package storage persists trades and engine state in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
)

// Metadata keys used for restart recovery.
const (
	MetaKeyCash      = "ledger_cash"
	MetaKeyPositions = "ledger_positions"
)

// TradeStore handles persistent storage of trades in SQLite. Trades are
// append-only; the metadata table holds a small KV snapshot of ledger state
// for restart recovery.
type TradeStore struct {
	db *sql.DB
}

// NewTradeStore opens (or creates) the SQLite database with WAL mode enabled.
func NewTradeStore(dbPath string) (*TradeStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	// Decimal money values are stored as TEXT to avoid float round-trips.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			ts INTEGER NOT NULL,
			signal_confidence REAL NOT NULL,
			signal_id TEXT NOT NULL,
			realized_pnl TEXT NOT NULL,
			realized_pnl_pct REAL NOT NULL,
			hold_duration_ns INTEGER NOT NULL,
			exit_reason TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades (ts);`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades index: %w", err)
	}

	return &TradeStore{db: db}, nil
}

// SaveTrade stores a trade in the database.
func (s *TradeStore) SaveTrade(ctx context.Context, t domain.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (
			trade_id, symbol, side, quantity, price, ts,
			signal_confidence, signal_id,
			realized_pnl, realized_pnl_pct, hold_duration_ns, exit_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, string(t.Side), t.Quantity.String(), t.Price.String(),
		t.Timestamp.UnixNano(),
		t.SignalConfidence, t.SignalID,
		t.RealizedPnL.String(), t.RealizedPnLPct, int64(t.HoldDuration), string(t.ExitReason),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// LoadTrades loads all trades ordered by execution time.
func (s *TradeStore) LoadTrades(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, symbol, side, quantity, price, ts,
		       signal_confidence, signal_id,
		       realized_pnl, realized_pnl_pct, hold_duration_ns, exit_reason
		FROM trades ORDER BY ts ASC, trade_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t          domain.Trade
			side       string
			qty, price string
			ts         int64
			pnl        string
			holdNs     int64
			exitReason string
		)
		if err := rows.Scan(
			&t.TradeID, &t.Symbol, &side, &qty, &price, &ts,
			&t.SignalConfidence, &t.SignalID,
			&pnl, &t.RealizedPnLPct, &holdNs, &exitReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		t.Side = domain.Side(side)
		t.Timestamp = time.Unix(0, ts)
		t.HoldDuration = time.Duration(holdNs)
		t.ExitReason = domain.ExitReason(exitReason)

		if t.Quantity, err = parseDecimal(qty, "quantity", t.TradeID); err != nil {
			return nil, err
		}
		if t.Price, err = parseDecimal(price, "price", t.TradeID); err != nil {
			return nil, err
		}
		if t.RealizedPnL, err = parseDecimal(pnl, "realized_pnl", t.TradeID); err != nil {
			return nil, err
		}

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return trades, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *TradeStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table. Missing keys return
// an empty string without error.
func (s *TradeStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveLedgerState snapshots cash and open positions for restart recovery.
func (s *TradeStore) SaveLedgerState(ctx context.Context, cash string, positions []domain.Position) error {
	now := time.Now().UnixNano()

	if err := s.UpsertMetadata(ctx, MetaKeyCash, cash, now); err != nil {
		return fmt.Errorf("failed to save cash: %w", err)
	}

	payload, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	if err := s.UpsertMetadata(ctx, MetaKeyPositions, string(payload), now); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}

	return nil
}

// LoadLedgerState returns the last snapshot. ok is false when no snapshot
// has been written yet.
func (s *TradeStore) LoadLedgerState(ctx context.Context) (cash string, positions []domain.Position, ok bool, err error) {
	cash, err = s.GetMetadata(ctx, MetaKeyCash)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to load cash: %w", err)
	}
	if cash == "" {
		return "", nil, false, nil
	}

	payload, err := s.GetMetadata(ctx, MetaKeyPositions)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to load positions: %w", err)
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &positions); err != nil {
			return "", nil, false, fmt.Errorf("failed to unmarshal positions: %w", err)
		}
	}

	return cash, positions, true, nil
}

// Close closes the database connection.
func (s *TradeStore) Close() error {
	return s.db.Close()
}

func parseDecimal(raw, column, tradeID string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad %s %q in trade %s: %w", column, raw, tradeID, err)
	}
	return d, nil
}
