package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type FlowType string

const (
	FlowTypeInflow  FlowType = "inflow"
	FlowTypeOutflow FlowType = "outflow"
)

// ParseFlowType validates a flow type read from the store. Unknown tags are
// rejected at the boundary instead of leaking into the aggregation.
func ParseFlowType(raw string) (FlowType, error) {
	switch FlowType(raw) {
	case FlowTypeInflow, FlowTypeOutflow:
		return FlowType(raw), nil
	}
	return "", fmt.Errorf("unknown flow type: %q", raw)
}

// CashFlowEntry is a planned cash movement. Amount is always signed: inflows
// positive, outflows negative. Rows are stored non-negative with the type tag
// and the repository applies the sign on read, so the rest of the code never
// has to reason about mixed encodings.
type CashFlowEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   *string         `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PlannedDate time.Time       `json:"planned_date"`
	FlowType    FlowType        `json:"flow_type"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	// Probability weights a planned flow in [0,1]. Carried for display;
	// aggregation sums nominal amounts.
	Probability float64 `json:"probability"`
	// Important flags entries that rank first under the constrained profile.
	Important bool      `json:"important"`
	CreatedAt time.Time `json:"created_at"`
}
