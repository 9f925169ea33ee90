package chart

import (
	"context"
)

// Provider renders a chart snapshot for a symbol. Implementations are
// interchangeable (hosted rendering API, browser screenshot); callers treat
// any failure as "no image" and relay without one.
type Provider interface {
	Get(ctx context.Context, symbol string) ([]byte, error)
	Configured() bool
}
