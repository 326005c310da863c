package repository

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const cashFlowsTable = "cash_flows"

type CashFlowRepository interface {
	// ListByUserInWindow returns the user's planned flows with
	// from <= planned_date <= to, ordered by planned date.
	ListByUserInWindow(userID string, from, to time.Time) ([]*domain.CashFlowEntry, error)
}

type cashFlowRepository struct {
	conn *postgres.Connection
}

func NewCashFlowRepository(conn *postgres.Connection) CashFlowRepository {
	return &cashFlowRepository{
		conn: conn,
	}
}

func (c *cashFlowRepository) ListByUserInWindow(userID string, from, to time.Time) ([]*domain.CashFlowEntry, error) {
	flowsSQL, args, err := squirrel.
		Select("id, user_id, account_id, amount, currency, planned_date, flow_type, description, category, probability, important, created_at").
		From(cashFlowsTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"planned_date": from}).
		Where(squirrel.LtOrEq{"planned_date": to}).
		OrderBy("planned_date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.conn.Query(flowsSQL, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "listing cash flows")
	}
	defer rows.Close()

	entries := make([]*domain.CashFlowEntry, 0)

	for rows.Next() {
		entry, err := deserializeCashFlow(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// deserializeCashFlow normalizes the stored encoding (non-negative amount plus
// a flow_type tag) into the domain's signed-amount convention: outflows come
// back negative, inflows positive.
func deserializeCashFlow(rows *sql.Rows) (*domain.CashFlowEntry, error) {
	entry := &domain.CashFlowEntry{}
	var rawFlowType string

	if err := rows.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.AccountID,
		&entry.Amount,
		&entry.Currency,
		&entry.PlannedDate,
		&rawFlowType,
		&entry.Description,
		&entry.Category,
		&entry.Probability,
		&entry.Important,
		&entry.CreatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "scanning cash flow")
	}

	flowType, err := domain.ParseFlowType(rawFlowType)
	if err != nil {
		return nil, err
	}
	entry.FlowType = flowType

	if flowType == domain.FlowTypeOutflow {
		entry.Amount = entry.Amount.Abs().Neg()
	} else {
		entry.Amount = entry.Amount.Abs()
	}

	return entry, nil
}
