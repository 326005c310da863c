package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "current"
	AccountTypeDeposit AccountType = "deposit"
	AccountTypeSavings AccountType = "savings"
)

// BankAccount is a corporate account owned by a dashboard user. Balances are
// stored in the account currency; conversion to the reporting currency happens
// in the aggregator. The core never mutates accounts.
type BankAccount struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Bank        string          `json:"bank"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	AccountType AccountType     `json:"account_type"`
	Active      bool            `json:"active"`
	// Priority orders accounts under the constrained rendering profile.
	// Higher means more prominent. Zero for accounts that never set it.
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
