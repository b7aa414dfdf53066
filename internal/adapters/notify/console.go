package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo en stdout. Es el
// notificador por defecto cuando Telegram no está configurado.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Send imprime el mensaje con timestamp.
func (c *Console) Send(_ context.Context, message string) error {
	fmt.Fprintf(c.out, "[%s] %s\n", time.Now().Format("15:04:05"), message)
	return nil
}

// PrintReport imprime el informe del ledger: órdenes recientes, fills
// notificados y actividad agregada por día.
func (c *Console) PrintReport(orders []domain.OrderRecord, fills []domain.Trade, dailies []domain.DailySummary) {
	fmt.Fprintf(c.out, "\n=== MAKER LEDGER REPORT ===\n")

	fmt.Fprintf(c.out, "\n-- RECENT ORDERS (%d) --\n", len(orders))
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "  (none)")
	} else {
		table := tablewriter.NewWriter(c.out)
		table.Header("Placed", "Side", "Outcome", "Price", "Size", "Status", "Order")

		for _, o := range orders {
			table.Append(
				o.PlacedAt.Format("01-02 15:04"),
				string(o.Side),
				string(o.Outcome),
				fmt.Sprintf("%.2f", o.Price),
				fmt.Sprintf("%.0f", o.Size),
				o.Status,
				shortID(o.CLOBOrderID, 14),
			)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\n-- NOTIFIED FILLS (%d) --\n", len(fills))
	if len(fills) == 0 {
		fmt.Fprintln(c.out, "  (none)")
	} else {
		table := tablewriter.NewWriter(c.out)
		table.Header("Matched", "Side", "Outcome", "Price", "Size", "Trade")

		for _, f := range fills {
			table.Append(
				f.Timestamp.Format("01-02 15:04"),
				string(f.Side),
				string(f.Outcome),
				fmt.Sprintf("%.2f", f.Price),
				fmt.Sprintf("%.0f", f.Size),
				shortID(f.ID, 14),
			)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\n-- DAILY ACTIVITY (%d days) --\n", len(dailies))
	if len(dailies) == 0 {
		fmt.Fprintln(c.out, "  (none)")
	} else {
		table := tablewriter.NewWriter(c.out)
		table.Header("Date", "Cycles", "Placed", "Cancelled", "Fills", "Shares")

		for _, d := range dailies {
			table.Append(
				d.Date.Format("2006-01-02"),
				fmt.Sprintf("%d", d.Cycles),
				fmt.Sprintf("%d", d.Placed),
				fmt.Sprintf("%d", d.Cancelled),
				fmt.Sprintf("%d", d.Fills),
				fmt.Sprintf("%.0f", d.FillShares),
			)
		}
		table.Render()
	}

	fmt.Fprintln(c.out)
}

// shortID recorta un hash largo para que la tabla quede legible.
func shortID(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
