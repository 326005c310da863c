package aggregating

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/infrastructure/rates"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/internal/config"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

// recommendationsByStatus is the fixed lookup behind the recommendation list.
// Reports never compute recommendations ad hoc.
var recommendationsByStatus = map[domain.LiquidityStatus][]string{
	domain.LiquidityCritical: {
		"Urgently review payment plans and arrange additional financing",
		"Consider deferring large outgoing payments",
	},
	domain.LiquidityLow: {
		"Tighten receivables collection control",
		"Optimize the accounts payable schedule",
	},
	domain.LiquidityExcess: {
		"Consider placing excess funds on deposit",
		"Evaluate investment options for idle funds",
	},
	domain.LiquidityAdequate: {},
}

type Service struct {
	userRepo     repository.UserRepository
	accountRepo  repository.AccountRepository
	cashFlowRepo repository.CashFlowRepository
	rates        rates.Service

	reportingCurrency string
	cfg               config.Report

	critical      decimal.Decimal
	low           decimal.Decimal
	excess        decimal.Decimal
	riskFloor     decimal.Decimal
	currencyShare decimal.Decimal
	bankShare     decimal.Decimal
}

func NewService(
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	cashFlowRepo repository.CashFlowRepository,
	ratesService rates.Service,
	cfg *config.Config,
) Aggregator {
	return &Service{
		userRepo:          userRepo,
		accountRepo:       accountRepo,
		cashFlowRepo:      cashFlowRepo,
		rates:             ratesService,
		reportingCurrency: cfg.Report.ReportingCurrency,
		cfg:               cfg.Report,
		critical:          decimal.NewFromFloat(cfg.Report.CriticalBelow),
		low:               decimal.NewFromFloat(cfg.Report.LowBelow),
		excess:            decimal.NewFromFloat(cfg.Report.ExcessAbove),
		riskFloor:         decimal.NewFromFloat(cfg.Report.RiskLiquidityBelow),
		currencyShare:     decimal.NewFromFloat(cfg.Report.CurrencySharePercent),
		bankShare:         decimal.NewFromFloat(cfg.Report.BankSharePercent),
	}
}

// newDocument loads the user and fills the envelope shared by all kinds.
func (s *Service) newDocument(
	kind domain.ReportKind,
	userID string,
	asOf time.Time,
	profile domain.RenderProfile,
	from, to time.Time,
) (*domain.AnalyticsDocument, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	return &domain.AnalyticsDocument{
		Kind:        kind,
		Profile:     profile,
		CompanyName: user.Company,
		UserName:    user.Name,
		GeneratedAt: asOf,
		PeriodFrom:  from,
		PeriodTo:    to,
	}, nil
}

func (s *Service) Liquidity(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error) {
	from := asOf.AddDate(0, 0, -s.cfg.LiquidityLookbackDays)
	to := asOf.AddDate(0, 0, s.cfg.LiquidityLookaheadDays)

	doc, err := s.newDocument(domain.ReportKindLiquidity, userID, asOf, profile, from, to)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	accountRows, total, err := s.convertAccounts(accounts)
	if err != nil {
		return nil, err
	}

	flows, err := s.cashFlowRepo.ListByUserInWindow(userID, from, to)
	if err != nil {
		return nil, err
	}

	inflows, outflows := sumFlows(flows)

	status, riskLevel := s.classifyLiquidity(total)

	recommendations := recommendationsByStatus[status]

	if profile == domain.ProfileConstrained {
		accountRows = topPriorityAccounts(accountRows, s.cfg.ConstrainedMaxAccounts)
		if len(recommendations) > s.cfg.ConstrainedMaxRecommendations {
			recommendations = recommendations[:s.cfg.ConstrainedMaxRecommendations]
		}
	}

	doc.Liquidity = &domain.LiquidityView{
		Status:          status,
		RiskLevel:       riskLevel,
		TotalBalance:    total,
		AccountsCount:   len(accounts),
		Inflows:         inflows,
		Outflows:        outflows,
		NetCashFlow:     inflows.Sub(outflows),
		Accounts:        accountRows,
		Recommendations: recommendations,
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
		"total":   total.StringFixed(0),
	}).Debug("liquidity analytics computed")

	return doc, nil
}

// classifyLiquidity applies the threshold bands. All comparisons are strict,
// so a balance exactly at a threshold falls into the band above it.
func (s *Service) classifyLiquidity(total decimal.Decimal) (domain.LiquidityStatus, domain.RiskLevel) {
	switch {
	case total.LessThan(s.critical):
		return domain.LiquidityCritical, domain.RiskLevelHigh
	case total.LessThan(s.low):
		return domain.LiquidityLow, domain.RiskLevelMedium
	case total.GreaterThan(s.excess):
		return domain.LiquidityExcess, domain.RiskLevelLow
	default:
		return domain.LiquidityAdequate, domain.RiskLevelLow
	}
}

func (s *Service) Risk(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error) {
	from := asOf.AddDate(0, 0, -s.cfg.LiquidityLookbackDays)

	doc, err := s.newDocument(domain.ReportKindRisk, userID, asOf, profile, from, asOf)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	accountRows, total, err := s.convertAccounts(accounts)
	if err != nil {
		return nil, err
	}

	currencyShares := sharesBy(accountRows, total, func(row domain.AccountRow) string { return row.Currency })
	bankShares := sharesBy(accountRows, total, func(row domain.AccountRow) string { return row.Bank })

	risks := make([]domain.RiskItem, 0)

	for _, share := range currencyShares {
		if share.Percent.GreaterThan(s.currencyShare) {
			risks = append(risks, domain.RiskItem{
				Type:           domain.RiskCurrencyConcentration,
				Level:          domain.RiskLevelHigh,
				Description:    fmt.Sprintf("Currency concentration in %s: %s%%", share.Key, share.Percent.StringFixed(1)),
				Recommendation: "Diversify the currency structure of the portfolio",
				Important:      true,
			})
		}
	}

	for _, share := range bankShares {
		if share.Percent.GreaterThan(s.bankShare) {
			risks = append(risks, domain.RiskItem{
				Type:           domain.RiskBankConcentration,
				Level:          domain.RiskLevelMedium,
				Description:    fmt.Sprintf("Counterparty concentration in %s: %s%%", share.Key, share.Percent.StringFixed(1)),
				Recommendation: "Consider spreading funds across several banks",
				Important:      false,
			})
		}
	}

	if total.LessThan(s.riskFloor) {
		risks = append(risks, domain.RiskItem{
			Type:           domain.RiskLiquidity,
			Level:          domain.RiskLevelHigh,
			Description:    "Liquidity level is low for operational needs",
			Recommendation: "Increase liquidity reserves or arrange additional financing",
			Important:      true,
		})
	}

	if profile == domain.ProfileConstrained {
		sort.SliceStable(risks, func(i, j int) bool {
			if risks[i].Important != risks[j].Important {
				return risks[i].Important
			}
			return risks[i].Level == domain.RiskLevelHigh && risks[j].Level != domain.RiskLevelHigh
		})
		if len(risks) > s.cfg.ConstrainedMaxRisks {
			risks = risks[:s.cfg.ConstrainedMaxRisks]
		}
	}

	highCount, mediumCount := 0, 0
	for _, risk := range risks {
		switch risk.Level {
		case domain.RiskLevelHigh:
			highCount++
		case domain.RiskLevelMedium:
			mediumCount++
		}
	}

	overall := domain.RiskLevelLow
	if highCount > 0 {
		overall = domain.RiskLevelHigh
	} else if mediumCount > 1 {
		overall = domain.RiskLevelMedium
	}

	doc.Risk = &domain.RiskView{
		OverallRisk:    overall,
		TotalBalance:   total,
		HighRisks:      highCount,
		MediumRisks:    mediumCount,
		Risks:          risks,
		CurrencyShares: currencyShares,
		BankShares:     bankShares,
	}

	return doc, nil
}

func (s *Service) Cashflow(userID string, asOf time.Time, profile domain.RenderProfile) (*domain.AnalyticsDocument, error) {
	from := asOf.AddDate(0, 0, -s.cfg.CashflowLookbackDays)
	to := asOf.AddDate(0, 0, s.cfg.CashflowLookaheadDays)

	doc, err := s.newDocument(domain.ReportKindCashflow, userID, asOf, profile, from, to)
	if err != nil {
		return nil, err
	}

	flows, err := s.cashFlowRepo.ListByUserInWindow(userID, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*domain.WeeklyBucket)
	totalInflows, totalOutflows := decimal.Zero, decimal.Zero

	for _, flow := range flows {
		week := weekKey(flow.PlannedDate)

		bucket, ok := buckets[week]
		if !ok {
			bucket = &domain.WeeklyBucket{Week: week}
			buckets[week] = bucket
		}

		if flow.Amount.IsNegative() {
			outflow := flow.Amount.Abs()
			bucket.Outflows = bucket.Outflows.Add(outflow)
			totalOutflows = totalOutflows.Add(outflow)
		} else {
			bucket.Inflows = bucket.Inflows.Add(flow.Amount)
			totalInflows = totalInflows.Add(flow.Amount)
		}

		bucket.Net = bucket.Inflows.Sub(bucket.Outflows)
	}

	weeks := make([]domain.WeeklyBucket, 0, len(buckets))
	for _, bucket := range buckets {
		weeks = append(weeks, *bucket)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })

	entries := make([]domain.CashFlowEntry, 0, len(flows))
	for _, flow := range flows {
		entries = append(entries, *flow)
	}

	if profile == domain.ProfileConstrained {
		orderByImportance(entries)
		if len(entries) > s.cfg.ConstrainedMaxEntries {
			entries = entries[:s.cfg.ConstrainedMaxEntries]
		}
	}

	doc.Cashflow = &domain.CashflowView{
		TotalInflows:  totalInflows,
		TotalOutflows: totalOutflows,
		NetCashFlow:   totalInflows.Sub(totalOutflows),
		WeeksAnalyzed: len(weeks),
		Weeks:         weeks,
		Entries:       entries,
	}

	return doc, nil
}

// convertAccounts converts every balance into the reporting currency and
// returns the rows in the repository's stable order plus the total.
func (s *Service) convertAccounts(accounts []*domain.BankAccount) ([]domain.AccountRow, decimal.Decimal, error) {
	rows := make([]domain.AccountRow, 0, len(accounts))
	total := decimal.Zero

	for _, acc := range accounts {
		converted, err := s.rates.Convert(acc.Balance, acc.Currency, s.reportingCurrency)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("account %s: %w", acc.ID, err)
		}

		total = total.Add(converted)
		rows = append(rows, domain.AccountRow{
			Name:             acc.Name,
			Bank:             acc.Bank,
			Currency:         acc.Currency,
			Balance:          acc.Balance,
			BalanceReporting: converted,
			AccountType:      acc.AccountType,
			Priority:         acc.Priority,
		})
	}

	return rows, total, nil
}

// sumFlows splits signed amounts into inflow and outflow totals. Outflows are
// reported as a positive magnitude.
func sumFlows(flows []*domain.CashFlowEntry) (inflows, outflows decimal.Decimal) {
	inflows, outflows = decimal.Zero, decimal.Zero

	for _, flow := range flows {
		if flow.Amount.IsNegative() {
			outflows = outflows.Add(flow.Amount.Abs())
		} else {
			inflows = inflows.Add(flow.Amount)
		}
	}

	return inflows, outflows
}

// sharesBy aggregates converted balances by a key and returns the breakdown
// ordered by descending amount (key ascending on ties) so the output is
// deterministic.
func sharesBy(rows []domain.AccountRow, total decimal.Decimal, key func(domain.AccountRow) string) []domain.Share {
	amounts := make(map[string]decimal.Decimal)
	for _, row := range rows {
		k := key(row)
		amounts[k] = amounts[k].Add(row.BalanceReporting)
	}

	shares := make([]domain.Share, 0, len(amounts))
	hundred := decimal.NewFromInt(100)

	for k, amount := range amounts {
		percent := decimal.Zero
		if total.IsPositive() {
			percent = amount.Div(total).Mul(hundred)
		}
		shares = append(shares, domain.Share{Key: k, Amount: amount, Percent: percent})
	}

	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].Amount.Equal(shares[j].Amount) {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		}
		return shares[i].Key < shares[j].Key
	})

	return shares
}

// topPriorityAccounts orders by descending display priority, keeping the
// original order on ties, and truncates to max.
func topPriorityAccounts(rows []domain.AccountRow, max int) []domain.AccountRow {
	ordered := make([]domain.AccountRow, len(rows))
	copy(ordered, rows)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	if len(ordered) > max {
		ordered = ordered[:max]
	}

	return ordered
}

// orderByImportance sorts entries by the importance flag first, then by
// absolute amount, both descending. Stable so equal entries keep date order.
func orderByImportance(entries []domain.CashFlowEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Important != entries[j].Important {
			return entries[i].Important
		}
		return entries[i].Amount.Abs().GreaterThan(entries[j].Amount.Abs())
	})
}

// weekKey derives the calendar-week bucket key, e.g. "2024-W07".
func weekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
