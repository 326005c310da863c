package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LiquidityStatus string

const (
	LiquidityCritical LiquidityStatus = "CRITICAL"
	LiquidityLow      LiquidityStatus = "LOW"
	LiquidityAdequate LiquidityStatus = "ADEQUATE"
	LiquidityExcess   LiquidityStatus = "EXCESS"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

type RiskType string

const (
	RiskCurrencyConcentration RiskType = "currency_concentration"
	RiskBankConcentration     RiskType = "bank_concentration"
	RiskLiquidity             RiskType = "liquidity"
)

// AnalyticsDocument is the aggregator output: exactly one of the view fields
// is set, matching Kind. It only lives in memory; what persists is the
// rendered artifact and the history metadata.
type AnalyticsDocument struct {
	Kind        ReportKind    `json:"kind"`
	Profile     RenderProfile `json:"profile"`
	CompanyName string        `json:"company_name"`
	UserName    string        `json:"user_name"`
	GeneratedAt time.Time     `json:"generated_at"`
	PeriodFrom  time.Time     `json:"period_from"`
	PeriodTo    time.Time     `json:"period_to"`

	Liquidity *LiquidityView `json:"liquidity,omitempty"`
	Risk      *RiskView      `json:"risk,omitempty"`
	Cashflow  *CashflowView  `json:"cashflow,omitempty"`
}

// AccountRow is an account as it appears in a rendered report, with the
// balance converted to the reporting currency.
type AccountRow struct {
	Name             string          `json:"name"`
	Bank             string          `json:"bank"`
	Currency         string          `json:"currency"`
	Balance          decimal.Decimal `json:"balance"`
	BalanceReporting decimal.Decimal `json:"balance_reporting"`
	AccountType      AccountType     `json:"account_type"`
	Priority         int             `json:"priority"`
}

type LiquidityView struct {
	Status          LiquidityStatus `json:"status"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	AccountsCount   int             `json:"accounts_count"`
	Inflows         decimal.Decimal `json:"inflows"`
	Outflows        decimal.Decimal `json:"outflows"`
	NetCashFlow     decimal.Decimal `json:"net_cash_flow"`
	Accounts        []AccountRow    `json:"accounts"`
	Recommendations []string        `json:"recommendations"`
}

type RiskItem struct {
	Type           RiskType  `json:"type"`
	Level          RiskLevel `json:"level"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	Important      bool      `json:"important"`
}

// Share is one slice of a concentration breakdown (per currency or per bank).
type Share struct {
	Key     string          `json:"key"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

type RiskView struct {
	OverallRisk    RiskLevel       `json:"overall_risk"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	HighRisks      int             `json:"high_risks"`
	MediumRisks    int             `json:"medium_risks"`
	Risks          []RiskItem      `json:"risks"`
	CurrencyShares []Share         `json:"currency_shares"`
	BankShares     []Share         `json:"bank_shares"`
}

type WeeklyBucket struct {
	Week     string          `json:"week"`
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

type CashflowView struct {
	TotalInflows  decimal.Decimal `json:"total_inflows"`
	TotalOutflows decimal.Decimal `json:"total_outflows"`
	NetCashFlow   decimal.Decimal `json:"net_cash_flow"`
	WeeksAnalyzed int             `json:"weeks_analyzed"`
	Weeks         []WeeklyBucket  `json:"weeks"`
	Entries       []CashFlowEntry `json:"entries"`
}
