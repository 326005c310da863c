package reporting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/infrastructure/notifier"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/infrastructure/storage"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/aggregating"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/rendering"
	"github.com/temirlan/finance-dashboard-api/pkg/metrics"
	"github.com/temirlan/finance-dashboard-api/pkg/utils"
)

type Service struct {
	reportRepo repository.ReportRepository
	aggregator aggregating.Aggregator
	renderer   rendering.Renderer
	store      storage.ArtifactStore
	notifier   notifier.Notifier

	// locks serializes runs per report id so two concurrent calls can never
	// interleave their read-modify-write of the definition.
	locks sync.Map

	now func() time.Time
}

func NewService(
	reportRepo repository.ReportRepository,
	aggregator aggregating.Aggregator,
	renderer rendering.Renderer,
	store storage.ArtifactStore,
	reportNotifier notifier.Notifier,
) *Service {
	return &Service{
		reportRepo: reportRepo,
		aggregator: aggregator,
		renderer:   renderer,
		store:      store,
		notifier:   reportNotifier,
		now:        time.Now,
	}
}

// RunReport runs the full lifecycle for one report and profile: aggregate,
// render, persist the artifact, append history and advance the schedule.
func (s *Service) RunReport(ctx context.Context, reportID string, profile domain.RenderProfile) (*domain.GenerationRecord, error) {
	unlock := s.lock(reportID)
	defer unlock()

	report, err := s.reportRepo.GetByID(reportID)
	if err != nil {
		return nil, errors.Wrap(err, "loading report definition")
	}
	if report == nil {
		return nil, errors.Wrapf(ErrReportNotFound, "id %s", reportID)
	}
	if !report.Active {
		return nil, errors.Wrapf(ErrReportNotActive, "id %s", reportID)
	}

	startedAt := s.now()

	artifact, genErr := s.generate(report, startedAt, profile)

	record := &domain.GenerationRecord{
		ReportID:    report.ID,
		UserID:      report.UserID,
		Profile:     profile,
		Success:     genErr == nil,
		GeneratedAt: startedAt,
	}

	record.ID, err = utils.GenerateID()
	if err != nil {
		return nil, errors.Wrap(err, "generating record id")
	}

	if genErr != nil {
		detail := genErr.Error()
		record.ErrorDetail = &detail
	} else {
		name := storage.ArtifactName(report.Kind, report.UserID, startedAt, profile, artifact.Extension)
		record.ArtifactPath, record.ArtifactSize, genErr = s.store.Save(name, artifact.Bytes)
		if genErr != nil {
			record.Success = false
			detail := genErr.Error()
			record.ErrorDetail = &detail
		}
	}

	// The run duration covers aggregation, rendering and the artifact write.
	record.DurationMS = s.now().Sub(startedAt).Milliseconds()

	update := s.runUpdate(report, startedAt, record.Success)

	if err := s.reportRepo.CompleteRun(ctx, update, record); err != nil {
		return record, errors.Wrap(err, "persisting run outcome")
	}

	metrics.ObserveRun(string(report.Kind), string(profile), record.Success, time.Duration(record.DurationMS)*time.Millisecond)

	logger := logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"kind":      report.Kind,
		"profile":   profile,
		"success":   record.Success,
	})

	if !record.Success {
		logger.WithField("error", *record.ErrorDetail).Warn("report run failed")
		return record, nil
	}

	logger.Info("report generated")
	s.notify(report, record, artifact, startedAt)

	return record, nil
}

// generate produces the rendered artifact. Every error here is a handled
// failure that ends up in history, not an error return of RunReport.
func (s *Service) generate(report *domain.ReportDefinition, asOf time.Time, profile domain.RenderProfile) (*rendering.Artifact, error) {
	var (
		document *domain.AnalyticsDocument
		err      error
	)

	switch report.Kind {
	case domain.ReportKindLiquidity:
		document, err = s.aggregator.Liquidity(report.UserID, asOf, profile)
	case domain.ReportKindRisk:
		document, err = s.aggregator.Risk(report.UserID, asOf, profile)
	case domain.ReportKindCashflow:
		document, err = s.aggregator.Cashflow(report.UserID, asOf, profile)
	default:
		return nil, fmt.Errorf("unsupported report kind: %q", report.Kind)
	}
	if err != nil {
		return nil, errors.Wrap(err, "aggregating")
	}

	artifact, err := s.renderer.Render(document)
	if err != nil {
		return nil, errors.Wrap(err, "rendering")
	}

	return artifact, nil
}

// runUpdate builds the post-run definition mutation. Non-manual schedules
// always move next_due_at forward, even after a failure, so a broken report
// can never wedge itself due-forever. Last-run bookkeeping only moves on
// success.
func (s *Service) runUpdate(report *domain.ReportDefinition, startedAt time.Time, success bool) repository.ReportRunUpdate {
	update := repository.ReportRunUpdate{ReportID: report.ID}

	if success {
		update.LastRunAt = &startedAt
		update.IncrementRun = true
	}

	if report.Schedule != domain.ScheduleManual {
		nextDue := NextDueAfter(report, startedAt)
		update.NextDueAt = &nextDue
	}

	return update
}

// NextDueAfter computes the next automatic run instant, strictly after now.
// The API uses it to seed next_due_at on newly created definitions.
func NextDueAfter(report *domain.ReportDefinition, now time.Time) time.Time {
	switch report.Schedule {
	case domain.ScheduleDaily:
		due := time.Date(now.Year(), now.Month(), now.Day(), report.ScheduleHour, 0, 0, 0, now.Location())
		if !due.After(now) {
			due = due.AddDate(0, 0, 1)
		}
		return due
	case domain.ScheduleWeekly:
		return now.AddDate(0, 0, 7)
	case domain.ScheduleMonthly:
		return time.Date(now.Year(), now.Month()+1, 1, report.ScheduleHour, 0, 0, 0, now.Location())
	}

	// manual never auto-runs; callers filter this out
	return now
}

func (s *Service) notify(report *domain.ReportDefinition, record *domain.GenerationRecord, artifact *rendering.Artifact, startedAt time.Time) {
	if len(report.Recipients) == 0 {
		return
	}

	s.notifier.Send(notifier.Message{
		Recipients:  report.Recipients,
		Subject:     fmt.Sprintf("%s (%s)", report.Name, startedAt.UTC().Format("02.01.2006")),
		Body:        artifact.Bytes,
		ContentType: artifact.ContentType,
	})
}

func (s *Service) lock(reportID string) func() {
	value, _ := s.locks.LoadOrStore(reportID, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}
