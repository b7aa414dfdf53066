package ports

import "context"

// Notifier entrega mensajes cortos al operador (Telegram, consola).
// El envío es fire-and-forget: si falla, el caller loguea y sigue —
// nunca reintenta ni bloquea el ciclo por una notificación.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
