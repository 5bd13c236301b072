package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Verdict is the banknote classification returned by the verification oracle.
// Denominations come from the small fixed set of printed banknote values, so the
// price comparison is exact decimal equality with no tolerance.
type Verdict struct {
	Denomination decimal.Decimal
	IsGenuine    bool
	Confidence   float64
	Reason       string
}

// BanknoteVerifier classifies a captured banknote image. Implementations map
// transport failures, timeouts, and unparseable responses to a non-genuine
// verdict with an explanatory reason; they never fail the caller for those.
type BanknoteVerifier interface {
	Verify(ctx context.Context, image []byte) Verdict
}
