package scheduler

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	repositoryMocks "github.com/temirlan/finance-dashboard-api/infrastructure/repository/mocks"
	"github.com/temirlan/finance-dashboard-api/internal/config"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	reportingMocks "github.com/temirlan/finance-dashboard-api/internal/usecases/reporting/mocks"
	"go.uber.org/mock/gomock"
)

var scanAt = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*ReportSchedulerService, *repositoryMocks.MockReportRepository, *reportingMocks.MockReportRunner) {
	ctrl := gomock.NewController(t)
	reportRepo := repositoryMocks.NewMockReportRepository(ctrl)
	runner := reportingMocks.NewMockReportRunner(ctrl)

	service := NewReportSchedulerService(reportRepo, runner, &config.Config{
		Scheduler: config.Scheduler{TickSeconds: 60, SweepCron: "0 * * * *", Enabled: true},
	})
	service.now = func() time.Time { return scanAt }

	return service, reportRepo, runner
}

func dueReport(id string, constrained bool) *domain.ReportDefinition {
	nextDue := scanAt.Add(-time.Minute)
	return &domain.ReportDefinition{
		ID:                 id,
		UserID:             "user-1",
		Kind:               domain.ReportKindLiquidity,
		Schedule:           domain.ScheduleDaily,
		Active:             true,
		ConstrainedEnabled: constrained,
		NextDueAt:          &nextDue,
	}
}

func successRecord() *domain.GenerationRecord {
	return &domain.GenerationRecord{Success: true}
}

func TestScanDueReports_RunsEveryRequiredProfile(t *testing.T) {
	service, reportRepo, runner := newTestScheduler(t)

	reportRepo.EXPECT().ListDue(scanAt).Return([]*domain.ReportDefinition{
		dueReport("rep-1", false),
		dueReport("rep-2", true),
	}, nil)

	runner.EXPECT().RunReport(gomock.Any(), "rep-1", domain.ProfileStandard).Return(successRecord(), nil)
	runner.EXPECT().RunReport(gomock.Any(), "rep-2", domain.ProfileStandard).Return(successRecord(), nil)
	runner.EXPECT().RunReport(gomock.Any(), "rep-2", domain.ProfileConstrained).Return(successRecord(), nil)

	service.scanDueReports()

	assert.Equal(t, scanAt, service.LastScanCompletedAt())
}

func TestScanDueReports_OneFailureDoesNotStopTheScan(t *testing.T) {
	service, reportRepo, runner := newTestScheduler(t)

	reportRepo.EXPECT().ListDue(scanAt).Return([]*domain.ReportDefinition{
		dueReport("rep-1", false),
		dueReport("rep-2", false),
	}, nil)

	runner.EXPECT().RunReport(gomock.Any(), "rep-1", domain.ProfileStandard).
		Return(nil, errors.New("definition vanished"))
	runner.EXPECT().RunReport(gomock.Any(), "rep-2", domain.ProfileStandard).
		Return(successRecord(), nil)

	service.scanDueReports()
}

func TestScanDueReports_PanicIsContained(t *testing.T) {
	service, reportRepo, runner := newTestScheduler(t)

	reportRepo.EXPECT().ListDue(scanAt).Return([]*domain.ReportDefinition{
		dueReport("rep-1", false),
		dueReport("rep-2", false),
	}, nil)

	runner.EXPECT().RunReport(gomock.Any(), "rep-1", domain.ProfileStandard).
		DoAndReturn(func(any, any, any) (*domain.GenerationRecord, error) {
			panic("template blew up")
		})
	runner.EXPECT().RunReport(gomock.Any(), "rep-2", domain.ProfileStandard).
		Return(successRecord(), nil)

	assert.NotPanics(t, service.scanDueReports)
}

func TestScanDueReports_ListFailureCompletesTheScan(t *testing.T) {
	service, reportRepo, _ := newTestScheduler(t)

	reportRepo.EXPECT().ListDue(scanAt).Return(nil, errors.New("connection refused"))

	service.scanDueReports()

	// the scan still counts as completed so the healthcheck does not flap
	assert.Equal(t, scanAt, service.LastScanCompletedAt())
}

func TestScanDueReports_SkipsWhenAlreadyRunning(t *testing.T) {
	service, _, _ := newTestScheduler(t)

	service.scanMutex.Lock()
	service.scanRunning = true
	service.scanMutex.Unlock()

	// no ListDue expectation: a second entry must return immediately
	service.scanDueReports()
}

func TestTriggerManualScan(t *testing.T) {
	service, reportRepo, _ := newTestScheduler(t)

	done := make(chan struct{})
	reportRepo.EXPECT().ListDue(scanAt).
		DoAndReturn(func(time.Time) ([]*domain.ReportDefinition, error) {
			close(done)
			return nil, nil
		})

	service.TriggerManualScan()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manual scan never started")
	}
}

func TestGetStatus(t *testing.T) {
	service, _, _ := newTestScheduler(t)

	status := service.GetStatus()
	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, 60, status["tick_seconds"])
	assert.Equal(t, "0 * * * *", status["sweep_cron"])
	assert.Equal(t, false, status["scan_running"])
}
