package domain

import "errors"

// Execution error taxonomy. All of these are recoverable, local-to-request
// failures: the caller gets a rejected ExecutionResult and the process keeps
// running. Ledger operations either fully succeed or fail with one of these
// and no partial state change.
var (
	ErrDuplicatePosition     = errors.New("position already open for symbol")
	ErrCapacityExceeded      = errors.New("maximum open positions reached")
	ErrInsufficientFunds     = errors.New("insufficient cash balance")
	ErrNoOpenPosition        = errors.New("no open position for symbol")
	ErrLowConfidence         = errors.New("signal confidence below threshold")
	ErrPriceUnavailable      = errors.New("price unavailable")
	ErrSizeTooSmall          = errors.New("position size too small")
	ErrUnsupportedSignalType = errors.New("unsupported signal type")
)
