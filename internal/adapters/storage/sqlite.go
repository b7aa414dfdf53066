package storage

// sqlite.go — ledger de auditoría en SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `orders`: una fila por intento de colocación, con el hash del CLOB
//     cuando la orden entró. Nunca se actualiza — es un log, no estado.
//   - `fills`: una fila por trade notificado, PK el trade ID del venue.
//     INSERT OR IGNORE hace la escritura idempotente entre reinicios.
//   - `cycles`: resumen ligero por ciclo del loop. Siempre 1 fila.
//   - Prune automático al arrancar: orders/fills > 30d, cycles > 14d.
//   - El loop nunca lee de aquí para decidir; los reads son del modo -report.

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
-- Órdenes colocadas por el bot, incluidos los intentos fallidos
CREATE TABLE IF NOT EXISTS orders (
    id            TEXT PRIMARY KEY,
    clob_order_id TEXT     NOT NULL DEFAULT '',
    condition_id  TEXT     NOT NULL,
    token_id      TEXT     NOT NULL,
    outcome       TEXT     NOT NULL,
    side          TEXT     NOT NULL,
    price         REAL     NOT NULL,
    size          REAL     NOT NULL,
    status        TEXT     NOT NULL,
    placed_at     DATETIME NOT NULL
);

-- Fills detectados por el poll de trades; PK natural del venue
CREATE TABLE IF NOT EXISTS fills (
    trade_id   TEXT PRIMARY KEY,
    token_id   TEXT     NOT NULL,
    outcome    TEXT     NOT NULL,
    side       TEXT     NOT NULL,
    price      REAL     NOT NULL,
    size       REAL     NOT NULL,
    matched_at DATETIME NOT NULL
);

-- Resumen por ciclo del loop de quoting
CREATE TABLE IF NOT EXISTS cycles (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    at           DATETIME NOT NULL,
    condition_id TEXT     NOT NULL,
    quotes       INTEGER  NOT NULL DEFAULT 0,
    placed       INTEGER  NOT NULL DEFAULT 0,
    cancelled    INTEGER  NOT NULL DEFAULT 0,
    pos_yes      REAL     NOT NULL DEFAULT 0,
    pos_no       REAL     NOT NULL DEFAULT 0,
    best_bid     REAL     NOT NULL DEFAULT 0,
    best_ask     REAL     NOT NULL DEFAULT 0,
    reward_est   REAL     NOT NULL DEFAULT 0,
    note         TEXT     NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_orders_placed ON orders(placed_at DESC);
CREATE INDEX IF NOT EXISTS idx_fills_matched ON fills(matched_at DESC);
CREATE INDEX IF NOT EXISTS idx_cycles_at     ON cycles(at DESC);
`

const (
	retentionOrders = 30 * 24 * time.Hour // órdenes y fills: 30 días
	retentionCycles = 14 * 24 * time.Hour // ciclos: 1 por minuto, 14 días bastan
)

// SQLiteLedger implementa ports.Ledger usando SQLite (pure Go, sin CGo).
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}

	l := &SQLiteLedger{db: db}
	l.pruneOld(context.Background())
	return l, nil
}

// RecordOrder guarda una orden colocada (o el intento fallido).
func (l *SQLiteLedger) RecordOrder(ctx context.Context, rec domain.OrderRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PlacedAt.IsZero() {
		rec.PlacedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO orders
			(id, clob_order_id, condition_id, token_id, outcome, side, price, size, status, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CLOBOrderID, rec.ConditionID, rec.TokenID,
		string(rec.Outcome), string(rec.Side), rec.Price, rec.Size,
		rec.Status, fmtTime(rec.PlacedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.RecordOrder: insert: %w", err)
	}
	return nil
}

// RecordFill guarda un fill detectado. Idempotente por trade ID.
func (l *SQLiteLedger) RecordFill(ctx context.Context, trade domain.Trade) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO fills
			(trade_id, token_id, outcome, side, price, size, matched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.TokenID, string(trade.Outcome), string(trade.Side),
		trade.Price, trade.Size, fmtTime(trade.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("storage.RecordFill: insert %s: %w", trade.ID, err)
	}
	return nil
}

// RecordCycle guarda el resumen de un ciclo del loop.
func (l *SQLiteLedger) RecordCycle(ctx context.Context, rec domain.CycleRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO cycles
			(at, condition_id, quotes, placed, cancelled, pos_yes, pos_no, best_bid, best_ask, reward_est, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fmtTime(rec.At), rec.ConditionID, rec.Quotes, rec.Placed, rec.Cancelled,
		rec.PosYes, rec.PosNo, rec.BestBid, rec.BestAsk, rec.RewardEst, rec.Note,
	)
	if err != nil {
		return fmt.Errorf("storage.RecordCycle: insert: %w", err)
	}
	return nil
}

// RecentOrders devuelve las últimas órdenes registradas, más nuevas primero.
func (l *SQLiteLedger) RecentOrders(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, clob_order_id, condition_id, token_id, outcome, side, price, size, status, placed_at
		FROM orders
		ORDER BY placed_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentOrders: query: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderRecord
	for rows.Next() {
		var rec domain.OrderRecord
		var outcome, side, placedAt string

		if err := rows.Scan(
			&rec.ID, &rec.CLOBOrderID, &rec.ConditionID, &rec.TokenID,
			&outcome, &side, &rec.Price, &rec.Size, &rec.Status, &placedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentOrders: scan row: %w", err)
		}

		rec.Outcome = domain.Outcome(outcome)
		rec.Side = domain.Side(side)
		rec.PlacedAt = parseTime(placedAt)
		orders = append(orders, rec)
	}
	return orders, rows.Err()
}

// RecentFills devuelve los últimos fills registrados, más nuevos primero.
func (l *SQLiteLedger) RecentFills(ctx context.Context, limit int) ([]domain.Trade, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT trade_id, token_id, outcome, side, price, size, matched_at
		FROM fills
		ORDER BY matched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentFills: query: %w", err)
	}
	defer rows.Close()

	var fills []domain.Trade
	for rows.Next() {
		var tr domain.Trade
		var outcome, side, matchedAt string

		if err := rows.Scan(
			&tr.ID, &tr.TokenID, &outcome, &side, &tr.Price, &tr.Size, &matchedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentFills: scan row: %w", err)
		}

		tr.Outcome = domain.Outcome(outcome)
		tr.Side = domain.Side(side)
		tr.Timestamp = parseTime(matchedAt)
		fills = append(fills, tr)
	}
	return fills, rows.Err()
}

// Dailies devuelve la actividad agregada por día natural, más antiguos primero.
func (l *SQLiteLedger) Dailies(ctx context.Context) ([]domain.DailySummary, error) {
	byDay := make(map[string]*domain.DailySummary)

	// Ciclos: conteo y sumas de placed/cancelled
	rows, err := l.db.QueryContext(ctx, `
		SELECT substr(at, 1, 10) AS day, COUNT(*), SUM(placed), SUM(cancelled)
		FROM cycles
		GROUP BY day`)
	if err != nil {
		return nil, fmt.Errorf("storage.Dailies: query cycles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var cycles, placed, cancelled int
		if err := rows.Scan(&day, &cycles, &placed, &cancelled); err != nil {
			return nil, fmt.Errorf("storage.Dailies: scan cycles: %w", err)
		}
		d := daySummary(byDay, day)
		d.Cycles = cycles
		d.Placed = placed
		d.Cancelled = cancelled
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Dailies: cycles rows: %w", err)
	}

	// Fills: conteo y shares
	fillRows, err := l.db.QueryContext(ctx, `
		SELECT substr(matched_at, 1, 10) AS day, COUNT(*), SUM(size)
		FROM fills
		GROUP BY day`)
	if err != nil {
		return nil, fmt.Errorf("storage.Dailies: query fills: %w", err)
	}
	defer fillRows.Close()

	for fillRows.Next() {
		var day string
		var fills int
		var shares float64
		if err := fillRows.Scan(&day, &fills, &shares); err != nil {
			return nil, fmt.Errorf("storage.Dailies: scan fills: %w", err)
		}
		d := daySummary(byDay, day)
		d.Fills = fills
		d.FillShares = shares
	}
	if err := fillRows.Err(); err != nil {
		return nil, fmt.Errorf("storage.Dailies: fills rows: %w", err)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days) // ISO dates ordenan cronológicamente

	out := make([]domain.DailySummary, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}

// Close cierra la conexión a la base de datos.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// --- helpers internos ---

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (l *SQLiteLedger) pruneOld(ctx context.Context) {
	cutoffOrders := fmtTime(time.Now().UTC().Add(-retentionOrders))
	cutoffCycles := fmtTime(time.Now().UTC().Add(-retentionCycles))
	l.db.ExecContext(ctx, `DELETE FROM orders WHERE placed_at < ?`, cutoffOrders)
	l.db.ExecContext(ctx, `DELETE FROM fills WHERE matched_at < ?`, cutoffOrders)
	l.db.ExecContext(ctx, `DELETE FROM cycles WHERE at < ?`, cutoffCycles)
}

func daySummary(byDay map[string]*domain.DailySummary, day string) *domain.DailySummary {
	if d, ok := byDay[day]; ok {
		return d
	}
	date, _ := time.Parse("2006-01-02", day)
	d := &domain.DailySummary{Date: date}
	byDay[day] = d
	return d
}

// timeLayout fija 9 dígitos de fracción: así el orden lexicográfico del
// texto coincide con el cronológico y substr(x, 1, 10) es el día natural.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
