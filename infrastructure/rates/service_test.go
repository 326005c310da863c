package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirlan/finance-dashboard-api/internal/config"
)

func newTestService() Service {
	return NewFixedTable(config.Rates{
		Table: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(480),
			"EUR": decimal.NewFromInt(520),
		},
	}, "KZT")
}

func TestRate_SameCurrencyIsIdentity(t *testing.T) {
	svc := newTestService()

	rate, err := svc.Rate("KZT", "KZT")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))

	// identity applies even to currencies missing from the table
	rate, err = svc.Rate("GBP", "GBP")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestConvert_IntoReportingCurrency(t *testing.T) {
	svc := newTestService()

	converted, err := svc.Convert(decimal.NewFromInt(100), "USD", "KZT")
	require.NoError(t, err)
	assert.True(t, converted.Equal(decimal.NewFromInt(48_000)))
}

func TestRate_UnknownCurrencyIsAnError(t *testing.T) {
	svc := newTestService()

	_, err := svc.Rate("GBP", "KZT")
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	// the table only converts into the reporting currency
	_, err = svc.Rate("USD", "EUR")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}
