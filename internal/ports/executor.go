package ports

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// OrderExecutor places and cancels real orders on Polymarket CLOB.
type OrderExecutor interface {
	// PlaceOrder signs and submits a GTC limit order to the CLOB.
	// Failures are wrapped in *PlacementError.
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlacedOrder, error)

	// CancelMarketOrders cancels every open order of this wallet in the given
	// market and returns how many were cancelled. Partial cancellation is not
	// fatal: the next cycle re-reads open orders and converges.
	CancelMarketOrders(ctx context.Context, conditionID string) (int, error)

	// CollateralBalance returns the on-chain USDC.e balance of the wallet.
	CollateralBalance(ctx context.Context) (float64, error)
}

// PlacementError envuelve un fallo al colocar una orden concreta.
type PlacementError struct {
	TokenID string
	Side    domain.Side
	Price   float64
	Err     error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s %s@%.2f: %v", e.Side, shortToken(e.TokenID), e.Price, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// CancelError envuelve un fallo al cancelar las órdenes de un mercado.
type CancelError struct {
	ConditionID string
	Err         error
}

func (e *CancelError) Error() string {
	return fmt.Sprintf("cancel orders %s: %v", e.ConditionID, e.Err)
}

func (e *CancelError) Unwrap() error { return e.Err }

func shortToken(id string) string {
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
