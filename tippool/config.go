package tippool

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIG - Injected tunables, one place for tests and deployment to touch
// =============================================================================

// Defaults. The fee rate and tolerance are configuration, not compiled-in
// literals, so a multi-tenant deployment can vary them without code changes.
const (
	DefaultFeeRate            = "0.03" // 3% flat card-network deduction
	DefaultReconcileTolerance = "0.1"  // 6 minutes, absorbs minute-level entry rounding
	DefaultQueryTimeout       = 10 * time.Second
)

type Config struct {
	// FeeRate is the flat fraction deducted from card tips, in [0, 1).
	FeeRate decimal.Decimal

	// ReconcileTolerance is the hours delta under which summed and
	// declared totals are considered a match.
	ReconcileTolerance decimal.Decimal

	// QueryTimeout bounds each historical range query. On expiry the whole
	// aggregation is abandoned and reported retryable.
	QueryTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		FeeRate:            decimal.RequireFromString(DefaultFeeRate),
		ReconcileTolerance: decimal.RequireFromString(DefaultReconcileTolerance),
		QueryTimeout:       DefaultQueryTimeout,
	}
}

func (c Config) Validate() error {
	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("fee rate %s: %w", c.FeeRate, ErrBadFeeRate)
	}
	if c.ReconcileTolerance.IsNegative() {
		return fmt.Errorf("reconcile tolerance %s: %w", c.ReconcileTolerance, ErrNegativeAmount)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive, got %s", c.QueryTimeout)
	}
	return nil
}
