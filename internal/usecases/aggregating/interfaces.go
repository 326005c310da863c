package aggregating

import (
	"time"

	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

// Aggregator computes the analytics document for one report kind. It is pure
// computation over the record store: it never mutates anything and never
// reads the clock (asOf is always explicit).
type Aggregator interface {
	// Liquidity classifies the user's converted total balance and summarizes
	// near-term cash flows.
	Liquidity(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error)

	// Risk detects currency/bank concentration and low-liquidity risks.
	Risk(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error)

	// Cashflow buckets planned flows by calendar week around asOf.
	Cashflow(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error)
}
