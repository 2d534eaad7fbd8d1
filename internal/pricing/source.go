// Package pricing supplies current market prices to the trading core.
//
// The core consumes the Source interface only; implementations here are
// interchangeable collaborators. Transient upstream failures surface as
// domain.ErrPriceUnavailable and never panic or crash a refresh pass.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source looks up the current price for a symbol. Implementations may cache
// (≤30s staleness is acceptable to the core) and must return an error
// wrapping domain.ErrPriceUnavailable for transient failures instead of
// propagating transport errors.
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

// Price implements Source.
func (f SourceFunc) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f(ctx, symbol)
}
