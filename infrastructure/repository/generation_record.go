package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const reportHistoryTable = "report_history"

type GenerationRecordRepository interface {
	// ListByReport returns history entries newest first, capped at limit.
	ListByReport(reportID string, limit uint64) ([]*domain.GenerationRecord, error)
}

type generationRecordRepository struct {
	conn *postgres.Connection
}

func NewGenerationRecordRepository(conn *postgres.Connection) GenerationRecordRepository {
	return &generationRecordRepository{
		conn: conn,
	}
}

func (g *generationRecordRepository) ListByReport(reportID string, limit uint64) ([]*domain.GenerationRecord, error) {
	historySQL, args, err := squirrel.
		Select("id, report_id, user_id, profile, artifact_path, artifact_size, duration_ms, success, error_detail, generated_at").
		From(reportHistoryTable).
		Where(squirrel.Eq{"report_id": reportID}).
		OrderBy("generated_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := g.conn.Query(historySQL, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "listing report history")
	}
	defer rows.Close()

	records := make([]*domain.GenerationRecord, 0)

	for rows.Next() {
		record := &domain.GenerationRecord{}
		var rawProfile string

		if err := rows.Scan(
			&record.ID,
			&record.ReportID,
			&record.UserID,
			&rawProfile,
			&record.ArtifactPath,
			&record.ArtifactSize,
			&record.DurationMS,
			&record.Success,
			&record.ErrorDetail,
			&record.GeneratedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scanning generation record")
		}

		profile, err := domain.ParseRenderProfile(rawProfile)
		if err != nil {
			return nil, err
		}
		record.Profile = profile

		records = append(records, record)
	}

	return records, rows.Err()
}

// insertRecordSQL builds the history append. It lives here rather than on the
// repository so CompleteRun can run it inside the same transaction as the
// definition update.
func insertRecordSQL(record *domain.GenerationRecord) (string, []interface{}, error) {
	insertSQL, args, err := squirrel.StatementBuilder.
		Insert(reportHistoryTable).
		Columns("id", "report_id", "user_id", "profile", "artifact_path", "artifact_size", "duration_ms", "success", "error_detail", "generated_at").
		Values(
			record.ID,
			record.ReportID,
			record.UserID,
			record.Profile,
			record.ArtifactPath,
			record.ArtifactSize,
			record.DurationMS,
			record.Success,
			record.ErrorDetail,
			record.GeneratedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "building generation record insert")
	}

	return insertSQL, args, nil
}
