package rendering

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

func liquidityDocument(profile domain.RenderProfile) *domain.AnalyticsDocument {
	generatedAt := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	return &domain.AnalyticsDocument{
		Kind:        domain.ReportKindLiquidity,
		Profile:     profile,
		CompanyName: "Steppe Logistics",
		UserName:    "Aigerim",
		GeneratedAt: generatedAt,
		PeriodFrom:  generatedAt.AddDate(0, 0, -7),
		PeriodTo:    generatedAt.AddDate(0, 0, 30),
		Liquidity: &domain.LiquidityView{
			Status:       domain.LiquidityLow,
			RiskLevel:    domain.RiskLevelMedium,
			TotalBalance: decimal.NewFromInt(48_000_000),
			Inflows:      decimal.NewFromInt(8_000_000),
			Outflows:     decimal.NewFromInt(2_000_000),
			NetCashFlow:  decimal.NewFromInt(6_000_000),
			Accounts: []domain.AccountRow{
				{
					Name:             "Operating account",
					Bank:             "Halyk",
					Currency:         "USD",
					Balance:          decimal.NewFromInt(100_000),
					BalanceReporting: decimal.NewFromInt(48_000_000),
				},
			},
			Recommendations: []string{"Tighten receivables collection control"},
		},
	}
}

func TestRender_Liquidity(t *testing.T) {
	artifact, err := NewHTMLRenderer().Render(liquidityDocument(domain.ProfileStandard))
	require.NoError(t, err)

	assert.Equal(t, "text/html; charset=utf-8", artifact.ContentType)
	assert.Equal(t, "html", artifact.Extension)

	html := string(artifact.Bytes)
	assert.Contains(t, html, "Liquidity Report")
	assert.Contains(t, html, "Steppe Logistics")
	assert.Contains(t, html, "LOW")
	assert.Contains(t, html, "48 000 000.00")
	assert.Contains(t, html, "Operating account")
	assert.Contains(t, html, "Tighten receivables collection control")
	assert.NotContains(t, html, `class="page constrained"`)
}

func TestRender_ConstrainedLayout(t *testing.T) {
	artifact, err := NewHTMLRenderer().Render(liquidityDocument(domain.ProfileConstrained))
	require.NoError(t, err)

	assert.Contains(t, string(artifact.Bytes), `class="page constrained"`)
}

func TestRender_IsDeterministic(t *testing.T) {
	renderer := NewHTMLRenderer()
	document := liquidityDocument(domain.ProfileStandard)

	first, err := renderer.Render(document)
	require.NoError(t, err)
	second, err := renderer.Render(document)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestRender_Risk(t *testing.T) {
	document := &domain.AnalyticsDocument{
		Kind:        domain.ReportKindRisk,
		Profile:     domain.ProfileStandard,
		CompanyName: "Steppe Logistics",
		GeneratedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		Risk: &domain.RiskView{
			OverallRisk:  domain.RiskLevelHigh,
			TotalBalance: decimal.NewFromInt(200_000_000),
			HighRisks:    1,
			Risks: []domain.RiskItem{
				{
					Type:           domain.RiskCurrencyConcentration,
					Level:          domain.RiskLevelHigh,
					Description:    "Currency concentration in USD: 75.0%",
					Recommendation: "Diversify the currency structure of the portfolio",
				},
			},
			CurrencyShares: []domain.Share{
				{Key: "USD", Amount: decimal.NewFromInt(150_000_000), Percent: decimal.NewFromInt(75)},
				{Key: "KZT", Amount: decimal.NewFromInt(50_000_000), Percent: decimal.NewFromInt(25)},
			},
		},
	}

	artifact, err := NewHTMLRenderer().Render(document)
	require.NoError(t, err)

	html := string(artifact.Bytes)
	assert.Contains(t, html, "Risk Report")
	assert.Contains(t, html, "Currency concentration in USD: 75.0%")
	assert.Contains(t, html, "75.0%")
}

func TestRender_Cashflow(t *testing.T) {
	document := &domain.AnalyticsDocument{
		Kind:        domain.ReportKindCashflow,
		Profile:     domain.ProfileStandard,
		CompanyName: "Steppe Logistics",
		GeneratedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		Cashflow: &domain.CashflowView{
			TotalInflows:  decimal.NewFromInt(11_000_000),
			TotalOutflows: decimal.NewFromInt(4_000_000),
			NetCashFlow:   decimal.NewFromInt(7_000_000),
			WeeksAnalyzed: 1,
			Weeks: []domain.WeeklyBucket{
				{
					Week:     "2024-W11",
					Inflows:  decimal.NewFromInt(11_000_000),
					Outflows: decimal.NewFromInt(4_000_000),
					Net:      decimal.NewFromInt(7_000_000),
				},
			},
		},
	}

	artifact, err := NewHTMLRenderer().Render(document)
	require.NoError(t, err)

	html := string(artifact.Bytes)
	assert.Contains(t, html, "Cash Flow Report")
	assert.Contains(t, html, "2024-W11")
	assert.Contains(t, html, "11 000 000.00")
}

func TestRender_RejectsMismatchedDocument(t *testing.T) {
	document := liquidityDocument(domain.ProfileStandard)
	document.Liquidity = nil

	_, err := NewHTMLRenderer().Render(document)
	assert.Error(t, err)

	document.Kind = domain.ReportKind("quarterly")
	_, err = NewHTMLRenderer().Render(document)
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "0.00"},
		{in: "999", want: "999.00"},
		{in: "1000", want: "1 000.00"},
		{in: "48000000", want: "48 000 000.00"},
		{in: "-2500000.5", want: "-2 500 000.50"},
		{in: "5.2", want: "5.20"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			value, err := decimal.NewFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatMoney(value))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	value, err := decimal.NewFromString("74.999")
	require.NoError(t, err)
	assert.Equal(t, "75.0%", formatPercent(value))
	assert.False(t, strings.Contains(formatPercent(decimal.NewFromInt(25)), "25.00"))
}
