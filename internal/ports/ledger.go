package ports

import (
	"context"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// Ledger persiste el rastro de auditoría del bot: órdenes colocadas,
// barridos de cancelación, fills notificados y resumen de cada ciclo.
// Es solo auditoría — el loop nunca lee el ledger para decidir.
type Ledger interface {
	// RecordOrder guarda una orden colocada (o su intento fallido).
	RecordOrder(ctx context.Context, rec domain.OrderRecord) error

	// RecordFill guarda un fill detectado. Idempotente por trade ID.
	RecordFill(ctx context.Context, trade domain.Trade) error

	// RecordCycle guarda el resumen de un ciclo del loop.
	RecordCycle(ctx context.Context, rec domain.CycleRecord) error

	// RecentOrders devuelve las últimas órdenes registradas, más nuevas primero.
	RecentOrders(ctx context.Context, limit int) ([]domain.OrderRecord, error)

	// RecentFills devuelve los últimos fills registrados, más nuevos primero.
	RecentFills(ctx context.Context, limit int) ([]domain.Trade, error)

	// Dailies devuelve la actividad agregada por día natural.
	Dailies(ctx context.Context) ([]domain.DailySummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
