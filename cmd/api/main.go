package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/infrastructure/notifier"
	"github.com/temirlan/finance-dashboard-api/infrastructure/rates"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/infrastructure/storage"
	"github.com/temirlan/finance-dashboard-api/internal/api"
	"github.com/temirlan/finance-dashboard-api/internal/config"
	"github.com/temirlan/finance-dashboard-api/internal/scheduler"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/aggregating"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/authenticating"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/rendering"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/reporting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("invalid log level %q, falling back to 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("log level set to %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	accountRepo := repository.NewAccountRepository(pgConn)
	cashFlowRepo := repository.NewCashFlowRepository(pgConn)
	reportRepo := repository.NewReportRepository(pgConn)
	recordRepo := repository.NewGenerationRecordRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	ratesService := rates.NewFixedTable(cfg.Rates, cfg.Report.ReportingCurrency)

	artifactStore, err := storage.NewFileStore(cfg.Report.OutputDir)
	if err != nil {
		logrus.WithError(err).Fatal("failed to prepare the report output directory")
	}

	reportNotifier := notifier.NewSMTPNotifier(cfg.SMTP)
	reportNotifier.Start(ctx)

	aggregator := aggregating.NewService(userRepo, accountRepo, cashFlowRepo, ratesService, cfg)
	renderer := rendering.NewHTMLRenderer()
	runner := reporting.NewService(reportRepo, aggregator, renderer, artifactStore, reportNotifier)

	reportScheduler := scheduler.NewReportSchedulerService(reportRepo, runner, cfg)
	if err := reportScheduler.Start(ctx); err != nil {
		logrus.WithError(err).Error("failed to start the report scheduler")
	} else {
		logrus.Info("report scheduler started")
	}

	server, err := api.New(
		cfg,
		authenticator,
		reportRepo,
		recordRepo,
		runner,
		reportScheduler,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger sets the log format and anchors the working directory so
// relative paths (config files, report output) resolve next to the binary.
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to ping PostgreSQL")
	}

	logrus.Info("PostgreSQL connection established")
	return conn
}
