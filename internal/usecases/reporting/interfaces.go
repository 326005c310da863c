package reporting

import (
	"context"

	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

// ReportRunner executes one report generation run end to end.
//
// The returned record is also written to history. A handled generation
// failure (aggregation, rendering, storage) comes back as a record with
// Success false and a nil error; the error return is reserved for
// ErrReportNotFound, ErrReportNotActive and history-write failures.
type ReportRunner interface {
	RunReport(ctx context.Context, reportID string, profile domain.RenderProfile) (*domain.GenerationRecord, error)
}
