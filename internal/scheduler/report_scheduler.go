package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/internal/config"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/reporting"
	"github.com/temirlan/finance-dashboard-api/pkg/metrics"
)

// ReportSchedulerConfig holds the scan cadence: a short fixed tick plus a
// coarser cron sweep that catches anything a tick missed.
type ReportSchedulerConfig struct {
	TickSeconds int
	SweepCron   string
	Enabled     bool
}

// ReportSchedulerService scans report definitions for due ones and hands each
// to the lifecycle runner, once per required profile.
type ReportSchedulerService struct {
	scheduler  *gocron.Scheduler
	config     ReportSchedulerConfig
	reportRepo repository.ReportRepository
	runner     reporting.ReportRunner

	scanRunning         bool
	scanMutex           sync.Mutex
	lastScanStartedAt   time.Time
	lastScanCompletedAt time.Time

	ctx context.Context
	now func() time.Time
}

func NewReportSchedulerService(
	reportRepo repository.ReportRepository,
	runner reporting.ReportRunner,
	appConfig *config.Config,
) *ReportSchedulerService {
	schedulerConfig := ReportSchedulerConfig{
		TickSeconds: appConfig.Scheduler.TickSeconds,
		SweepCron:   appConfig.Scheduler.SweepCron,
		Enabled:     appConfig.Scheduler.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"tick_seconds": schedulerConfig.TickSeconds,
		"sweep_cron":   schedulerConfig.SweepCron,
		"enabled":      schedulerConfig.Enabled,
	}).Info("report scheduler configuration loaded")

	return &ReportSchedulerService{
		scheduler:  gocron.NewScheduler(time.UTC),
		config:     schedulerConfig,
		reportRepo: reportRepo,
		runner:     runner,
		ctx:        context.Background(),
		now:        time.Now,
	}
}

// Start schedules the tick and sweep jobs and runs the scheduler until the
// context is cancelled.
func (s *ReportSchedulerService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("report scheduler disabled by configuration")
		return nil
	}

	s.ctx = ctx

	logrus.WithFields(logrus.Fields{
		"tick_seconds": s.config.TickSeconds,
		"sweep_cron":   s.config.SweepCron,
	}).Info("starting report scheduler")

	if _, err := s.scheduler.Every(s.config.TickSeconds).Seconds().Do(s.scanDueReports); err != nil {
		return fmt.Errorf("scheduling report tick: %w", err)
	}

	if _, err := s.scheduler.Cron(s.config.SweepCron).Do(s.scanDueReports); err != nil {
		return fmt.Errorf("scheduling report sweep: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("stopping report scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// scanDueReports runs one scan. Overlapping scans are skipped instead of
// queued: the next tick picks up whatever was still due.
func (s *ReportSchedulerService) scanDueReports() {
	s.scanMutex.Lock()
	if s.scanRunning {
		s.scanMutex.Unlock()
		logrus.Info("report scan already in progress, skipping")
		return
	}
	s.scanRunning = true
	s.lastScanStartedAt = s.now()
	s.scanMutex.Unlock()

	defer func() {
		s.scanMutex.Lock()
		s.scanRunning = false
		s.lastScanCompletedAt = s.now()
		s.scanMutex.Unlock()
		metrics.SchedulerLastTick.SetToCurrentTime()
	}()

	scanAt := s.now()

	due, err := s.reportRepo.ListDue(scanAt)
	if err != nil {
		logrus.WithError(err).Error("listing due reports failed")
		return
	}

	metrics.SchedulerReportsDue.Set(float64(len(due)))

	if len(due) == 0 {
		return
	}

	logrus.WithField("due", len(due)).Info("due reports found")

	for _, report := range due {
		s.runDueReport(report)
	}
}

// runDueReport executes every profile a definition asks for. A panic in one
// report must not take down the scan loop, so each report runs under its own
// recover.
func (s *ReportSchedulerService) runDueReport(report *domain.ReportDefinition) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"report_id": report.ID,
				"panic":     r,
			}).Error("report run panicked")
		}
	}()

	profiles := []domain.RenderProfile{domain.ProfileStandard}
	if report.ConstrainedEnabled {
		profiles = append(profiles, domain.ProfileConstrained)
	}

	for _, profile := range profiles {
		record, err := s.runner.RunReport(s.ctx, report.ID, profile)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"report_id": report.ID,
				"profile":   profile,
			}).Error("report run failed")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"report_id": report.ID,
			"profile":   profile,
			"success":   record.Success,
			"duration":  record.DurationMS,
		}).Info("report run finished")
	}
}

// TriggerManualScan starts a scan outside the schedule, e.g. from the API.
func (s *ReportSchedulerService) TriggerManualScan() {
	s.scanMutex.Lock()
	if s.scanRunning {
		s.scanMutex.Unlock()
		logrus.Info("report scan already in progress, ignoring manual trigger")
		return
	}
	s.scanMutex.Unlock()

	logrus.Info("starting manual report scan")
	go s.scanDueReports()
}

// GetStatus reports the scheduler state for the status endpoint.
func (s *ReportSchedulerService) GetStatus() map[string]any {
	s.scanMutex.Lock()
	defer s.scanMutex.Unlock()

	return map[string]any{
		"enabled":                s.config.Enabled,
		"tick_seconds":           s.config.TickSeconds,
		"sweep_cron":             s.config.SweepCron,
		"scan_running":           s.scanRunning,
		"last_scan_started_at":   s.lastScanStartedAt,
		"last_scan_completed_at": s.lastScanCompletedAt,
	}
}

// LastScanCompletedAt is used by the healthcheck to detect a stalled loop.
func (s *ReportSchedulerService) LastScanCompletedAt() time.Time {
	s.scanMutex.Lock()
	defer s.scanMutex.Unlock()
	return s.lastScanCompletedAt
}
