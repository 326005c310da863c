package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const reportsTable = "reports"

// ReportRunUpdate carries the only mutation the core ever applies to a report
// definition: the post-run bookkeeping. Nil fields are left untouched.
type ReportRunUpdate struct {
	ReportID     string
	LastRunAt    *time.Time
	NextDueAt    *time.Time
	IncrementRun bool
}

func (u ReportRunUpdate) empty() bool {
	return u.LastRunAt == nil && u.NextDueAt == nil && !u.IncrementRun
}

type ReportRepository interface {
	GetByID(reportID string) (*domain.ReportDefinition, error)
	ListByUser(userID string) ([]*domain.ReportDefinition, error)
	// ListDue returns active, non-manual definitions with next_due_at <= now.
	ListDue(now time.Time) ([]*domain.ReportDefinition, error)
	Create(report *domain.ReportDefinition) error
	// CompleteRun atomically applies the post-run update and appends the
	// generation record. Both commit or neither does.
	CompleteRun(ctx context.Context, update ReportRunUpdate, record *domain.GenerationRecord) error
}

type reportRepository struct {
	conn *postgres.Connection
}

func NewReportRepository(conn *postgres.Connection) ReportRepository {
	return &reportRepository{
		conn: conn,
	}
}

const reportColumns = "id, user_id, name, kind, schedule, schedule_hour, recipients, active, constrained_enabled, last_run_at, next_due_at, run_count, created_at"

func (r *reportRepository) GetByID(reportID string) (*domain.ReportDefinition, error) {
	reportSQL, args, err := squirrel.
		Select(reportColumns).
		From(reportsTable).
		Where(squirrel.Eq{"id": reportID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(reportSQL, args...)

	report, err := deserializeReport(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return report, nil
}

func (r *reportRepository) ListByUser(userID string) ([]*domain.ReportDefinition, error) {
	return r.listReports(squirrel.Eq{"user_id": userID})
}

func (r *reportRepository) ListDue(now time.Time) ([]*domain.ReportDefinition, error) {
	return r.listReports(squirrel.And{
		squirrel.Eq{"active": true},
		squirrel.NotEq{"schedule": domain.ScheduleManual},
		squirrel.LtOrEq{"next_due_at": now},
	})
}

func (r *reportRepository) listReports(whereClause squirrel.Sqlizer) ([]*domain.ReportDefinition, error) {
	reportsSQL, args, err := squirrel.
		Select(reportColumns).
		From(reportsTable).
		Where(whereClause).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(reportsSQL, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "listing reports")
	}
	defer rows.Close()

	reports := make([]*domain.ReportDefinition, 0)

	for rows.Next() {
		report, err := deserializeReport(rows.Scan)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// deserializeReport validates the kind and schedule tags on read, so an
// unknown tag is rejected at the store boundary instead of deep inside a run.
func deserializeReport(scan func(dest ...interface{}) error) (*domain.ReportDefinition, error) {
	report := &domain.ReportDefinition{}
	var rawKind, rawSchedule string

	if err := scan(
		&report.ID,
		&report.UserID,
		&report.Name,
		&rawKind,
		&rawSchedule,
		&report.ScheduleHour,
		&report.Recipients,
		&report.Active,
		&report.ConstrainedEnabled,
		&report.LastRunAt,
		&report.NextDueAt,
		&report.RunCount,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}

	kind, err := domain.ParseReportKind(rawKind)
	if err != nil {
		return nil, err
	}
	report.Kind = kind

	schedule, err := domain.ParseSchedulePolicy(rawSchedule)
	if err != nil {
		return nil, err
	}
	report.Schedule = schedule

	return report, nil
}

func (r *reportRepository) Create(report *domain.ReportDefinition) error {
	insertSQL, args, err := squirrel.StatementBuilder.
		Insert(reportsTable).
		Columns("id", "user_id", "name", "kind", "schedule", "schedule_hour", "recipients", "active", "constrained_enabled", "next_due_at", "run_count", "created_at").
		Values(
			report.ID,
			report.UserID,
			report.Name,
			report.Kind,
			report.Schedule,
			report.ScheduleHour,
			report.Recipients,
			report.Active,
			report.ConstrainedEnabled,
			report.NextDueAt,
			report.RunCount,
			report.CreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building report insert")
	}

	if _, err := r.conn.Exec(insertSQL, args...); err != nil {
		return errors.Wrap(err, "inserting report")
	}

	return nil
}

func (r *reportRepository) CompleteRun(ctx context.Context, update ReportRunUpdate, record *domain.GenerationRecord) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if !update.empty() {
			builder := squirrel.StatementBuilder.
				Update(reportsTable).
				Where(squirrel.Eq{"id": update.ReportID}).
				PlaceholderFormat(squirrel.Dollar)

			if update.LastRunAt != nil {
				builder = builder.Set("last_run_at", *update.LastRunAt)
			}
			if update.NextDueAt != nil {
				builder = builder.Set("next_due_at", *update.NextDueAt)
			}
			if update.IncrementRun {
				builder = builder.Set("run_count", squirrel.Expr("run_count + 1"))
			}

			updateSQL, args, err := builder.ToSql()
			if err != nil {
				return errors.Wrap(err, "building report update")
			}

			if _, err := tx.Exec(updateSQL, args...); err != nil {
				return errors.Wrap(err, "updating report after run")
			}
		}

		insertSQL, args, err := insertRecordSQL(record)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(insertSQL, args...); err != nil {
			return errors.Wrap(err, "inserting generation record")
		}

		return nil
	})
}
