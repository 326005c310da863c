// Package rates is the currency-rate collaborator. The table is fixed,
// supplied by configuration; fetching live rates is outside this service.
package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/internal/config"
)

// ErrUnknownCurrency is returned when a conversion pair is not in the table.
// An absent rate is an error, never a silent zero: a zero would corrupt every
// downstream threshold classification.
var ErrUnknownCurrency = errors.New("unknown currency")

type Service interface {
	// Rate returns the multiplication factor converting one unit of from
	// into to.
	Rate(from, to string) (decimal.Decimal, error)
	// Convert applies Rate to an amount.
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

type fixedTable struct {
	reporting string
	table     map[string]decimal.Decimal
}

// NewFixedTable builds the rate service from the configured table. The table
// is keyed by source currency; every factor converts into the reporting
// currency.
func NewFixedTable(cfg config.Rates, reportingCurrency string) Service {
	logrus.WithFields(logrus.Fields{
		"reporting_currency": reportingCurrency,
		"currencies":         len(cfg.Table),
	}).Info("fixed rate table loaded")

	return &fixedTable{
		reporting: reportingCurrency,
		table:     cfg.Table,
	}
}

func (f *fixedTable) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	if to != f.reporting {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s->%s", ErrUnknownCurrency, from, to)
	}

	factor, ok := f.table[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}

	return factor, nil
}

func (f *fixedTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	factor, err := f.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(factor), nil
}
