package reporting

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	notifierMocks "github.com/temirlan/finance-dashboard-api/infrastructure/notifier/mocks"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	repositoryMocks "github.com/temirlan/finance-dashboard-api/infrastructure/repository/mocks"
	storageMocks "github.com/temirlan/finance-dashboard-api/infrastructure/storage/mocks"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	aggregatingMocks "github.com/temirlan/finance-dashboard-api/internal/usecases/aggregating/mocks"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/rendering"
	renderingMocks "github.com/temirlan/finance-dashboard-api/internal/usecases/rendering/mocks"
	"go.uber.org/mock/gomock"
)

var runAt = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type runnerMocks struct {
	reportRepo *repositoryMocks.MockReportRepository
	aggregator *aggregatingMocks.MockAggregator
	renderer   *renderingMocks.MockRenderer
	store      *storageMocks.MockArtifactStore
	notifier   *notifierMocks.MockNotifier
}

func newTestRunner(t *testing.T) (*Service, *runnerMocks) {
	ctrl := gomock.NewController(t)

	m := &runnerMocks{
		reportRepo: repositoryMocks.NewMockReportRepository(ctrl),
		aggregator: aggregatingMocks.NewMockAggregator(ctrl),
		renderer:   renderingMocks.NewMockRenderer(ctrl),
		store:      storageMocks.NewMockArtifactStore(ctrl),
		notifier:   notifierMocks.NewMockNotifier(ctrl),
	}

	service := NewService(m.reportRepo, m.aggregator, m.renderer, m.store, m.notifier)
	service.now = func() time.Time { return runAt }

	return service, m
}

func dailyReport() *domain.ReportDefinition {
	return &domain.ReportDefinition{
		ID:           "rep-1",
		UserID:       "user-1",
		Name:         "Daily liquidity",
		Kind:         domain.ReportKindLiquidity,
		Schedule:     domain.ScheduleDaily,
		ScheduleHour: 8,
		Active:       true,
	}
}

func liquidityDoc() *domain.AnalyticsDocument {
	return &domain.AnalyticsDocument{
		Kind:      domain.ReportKindLiquidity,
		Profile:   domain.ProfileStandard,
		Liquidity: &domain.LiquidityView{Status: domain.LiquidityAdequate},
	}
}

func htmlArtifact() *rendering.Artifact {
	return &rendering.Artifact{
		Bytes:       []byte("<html>report</html>"),
		ContentType: "text/html; charset=utf-8",
		Extension:   "html",
	}
}

func TestRunReport_Success(t *testing.T) {
	service, m := newTestRunner(t)

	report := dailyReport()
	report.Recipients = []string{"cfo@steppe.kz"}

	var gotUpdate repository.ReportRunUpdate
	var gotRecord *domain.GenerationRecord

	m.reportRepo.EXPECT().GetByID("rep-1").Return(report, nil)
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).Return(liquidityDoc(), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return(htmlArtifact(), nil)
	m.store.EXPECT().Save("liquidity_user-1_20240315_090000.html", gomock.Any()).
		Return("/reports/liquidity_user-1_20240315_090000.html", int64(19), nil)
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, update repository.ReportRunUpdate, record *domain.GenerationRecord) error {
			gotUpdate = update
			gotRecord = record
			return nil
		})
	m.notifier.EXPECT().Send(gomock.Any())

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Same(t, record, gotRecord)

	assert.True(t, record.Success)
	assert.Nil(t, record.ErrorDetail)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "/reports/liquidity_user-1_20240315_090000.html", record.ArtifactPath)
	assert.Equal(t, int64(19), record.ArtifactSize)
	assert.Equal(t, runAt, record.GeneratedAt)

	require.NotNil(t, gotUpdate.LastRunAt)
	assert.Equal(t, runAt, *gotUpdate.LastRunAt)
	assert.True(t, gotUpdate.IncrementRun)

	// 8h schedule, run at 9h: next due is tomorrow 8h
	require.NotNil(t, gotUpdate.NextDueAt)
	assert.Equal(t, time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC), *gotUpdate.NextDueAt)
}

func TestRunReport_DurationIncludesArtifactWrite(t *testing.T) {
	service, m := newTestRunner(t)

	clock := runAt
	service.now = func() time.Time { return clock }

	m.reportRepo.EXPECT().GetByID("rep-1").Return(dailyReport(), nil)
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).Return(liquidityDoc(), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return(htmlArtifact(), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(string, []byte) (string, int64, error) {
			clock = runAt.Add(700 * time.Millisecond)
			return "/reports/out.html", int64(19), nil
		})
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	require.NoError(t, err)

	assert.Equal(t, int64(700), record.DurationMS)
}

func TestRunReport_NotFound(t *testing.T) {
	service, m := newTestRunner(t)

	m.reportRepo.EXPECT().GetByID("missing").Return(nil, nil)

	record, err := service.RunReport(context.Background(), "missing", domain.ProfileStandard)
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.Nil(t, record)
}

func TestRunReport_InactiveSkipsSilently(t *testing.T) {
	service, m := newTestRunner(t)

	report := dailyReport()
	report.Active = false

	// no aggregation, no history write
	m.reportRepo.EXPECT().GetByID("rep-1").Return(report, nil)

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	assert.ErrorIs(t, err, ErrReportNotActive)
	assert.Nil(t, record)
}

func TestRunReport_AggregationFailureIsRecorded(t *testing.T) {
	service, m := newTestRunner(t)

	var gotUpdate repository.ReportRunUpdate

	m.reportRepo.EXPECT().GetByID("rep-1").Return(dailyReport(), nil)
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).
		Return(nil, errors.New("user not found: user-1"))
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, update repository.ReportRunUpdate, _ *domain.GenerationRecord) error {
			gotUpdate = update
			return nil
		})

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.False(t, record.Success)
	require.NotNil(t, record.ErrorDetail)
	assert.Contains(t, *record.ErrorDetail, "user not found")
	assert.Empty(t, record.ArtifactPath)

	// the schedule still moves forward, but last-run bookkeeping does not
	assert.Nil(t, gotUpdate.LastRunAt)
	assert.False(t, gotUpdate.IncrementRun)
	require.NotNil(t, gotUpdate.NextDueAt)
	assert.True(t, gotUpdate.NextDueAt.After(runAt))
}

func TestRunReport_ManualFailureWritesRecordOnly(t *testing.T) {
	service, m := newTestRunner(t)

	report := dailyReport()
	report.Schedule = domain.ScheduleManual

	var gotUpdate repository.ReportRunUpdate

	m.reportRepo.EXPECT().GetByID("rep-1").Return(report, nil)
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).Return(liquidityDoc(), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return(nil, errors.New("template exploded"))
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, update repository.ReportRunUpdate, _ *domain.GenerationRecord) error {
			gotUpdate = update
			return nil
		})

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	require.NoError(t, err)
	assert.False(t, record.Success)

	assert.Nil(t, gotUpdate.LastRunAt)
	assert.Nil(t, gotUpdate.NextDueAt)
	assert.False(t, gotUpdate.IncrementRun)
}

func TestRunReport_UnsupportedKind(t *testing.T) {
	service, m := newTestRunner(t)

	report := dailyReport()
	report.Kind = domain.ReportKind("quarterly")

	m.reportRepo.EXPECT().GetByID("rep-1").Return(report, nil)
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	require.NoError(t, err)
	assert.False(t, record.Success)
	assert.Contains(t, *record.ErrorDetail, "unsupported report kind")
}

func TestRunReport_HistoryWriteFailurePropagates(t *testing.T) {
	service, m := newTestRunner(t)

	m.reportRepo.EXPECT().GetByID("rep-1").Return(dailyReport(), nil)
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).Return(liquidityDoc(), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return(htmlArtifact(), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return("/reports/x.html", int64(19), nil)
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	record, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
	assert.Error(t, err)
	// the attempted record is still handed back for logging
	assert.NotNil(t, record)
}

func TestNextDueAfter(t *testing.T) {
	tests := []struct {
		name     string
		schedule domain.SchedulePolicy
		hour     int
		now      time.Time
		want     time.Time
	}{
		{
			name:     "daily after the hour rolls to tomorrow",
			schedule: domain.ScheduleDaily,
			hour:     8,
			now:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "daily before the hour stays today",
			schedule: domain.ScheduleDaily,
			hour:     8,
			now:      time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "daily exactly at the hour rolls to tomorrow",
			schedule: domain.ScheduleDaily,
			hour:     8,
			now:      time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly is a flat seven days out",
			schedule: domain.ScheduleWeekly,
			now:      time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 22, 9, 30, 0, 0, time.UTC),
		},
		{
			name:     "monthly is the first of next month",
			schedule: domain.ScheduleMonthly,
			hour:     8,
			now:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly rolls over the year",
			schedule: domain.ScheduleMonthly,
			hour:     8,
			now:      time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &domain.ReportDefinition{Schedule: tt.schedule, ScheduleHour: tt.hour}

			got := NextDueAfter(report, tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now), "next due must move strictly forward")
		})
	}
}

func TestRunReport_ConcurrentRunsAreSerialized(t *testing.T) {
	service, m := newTestRunner(t)

	const runs = 8
	var active, maxActive int32

	m.reportRepo.EXPECT().GetByID("rep-1").Times(runs).
		DoAndReturn(func(string) (*domain.ReportDefinition, error) {
			current := atomic.AddInt32(&active, 1)
			for {
				max := atomic.LoadInt32(&maxActive)
				if current <= max || atomic.CompareAndSwapInt32(&maxActive, max, current) {
					break
				}
			}
			return dailyReport(), nil
		})
	m.aggregator.EXPECT().Liquidity("user-1", runAt, domain.ProfileStandard).Times(runs).
		Return(liquidityDoc(), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Times(runs).Return(htmlArtifact(), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Times(runs).Return("/reports/x.html", int64(19), nil)
	m.reportRepo.EXPECT().CompleteRun(gomock.Any(), gomock.Any(), gomock.Any()).Times(runs).
		DoAndReturn(func(context.Context, repository.ReportRunUpdate, *domain.GenerationRecord) error {
			atomic.AddInt32(&active, -1)
			return nil
		})

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RunReport(context.Background(), "rep-1", domain.ProfileStandard)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// the per-report lock keeps the read-modify-write windows disjoint
	assert.Equal(t, int32(1), maxActive)
}
