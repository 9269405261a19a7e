package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/config"
	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/pkg/clients/webhook"
)

const (
	jobTimeout        = 5 * time.Minute
	notificationTitle = "Daily storage fees"

	outcomeSuccess = "success"
	outcomePartial = "partial"
	outcomeFailure = "failure"
)

// Refresher updates the running day count of open records.
type Refresher interface {
	RefreshOpenRecords(ctx context.Context) ([]models.WarehouseRecord, error)
}

// Reporter builds, stores and publishes the daily snapshot.
type Reporter interface {
	BuildSnapshot(ctx context.Context) (models.StorageFeeSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error
	ExportSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error
	Summary(snapshot models.StorageFeeSnapshot) string
}

// RunRecorder receives the outcome of each accrual run.
type RunRecorder interface {
	RecordAccrualRun(outcome string, inWarehouse int, accrued float64, extended int)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	refresher Refresher
	reporter  Reporter
	notifier  webhook.Client
	export    bool
	recorder  RunRecorder
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil to
// disable notifications.
func NewScheduler(cfg config.Config, refresher Refresher, reporter Reporter, notifier webhook.Client, recorder RunRecorder, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}

	cronLogger := zapCronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:      c,
		schedule:  cfg.Reporting.CronSchedule,
		refresher: refresher,
		reporter:  reporter,
		notifier:  notifier,
		export:    cfg.Sheets.Enabled(),
		recorder:  recorder,
		logger:    logger,
	}, nil
}

// Start registers the storage accrual job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_ = s.RunAccrual(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule storage accrual %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunAccrual refreshes open records, then builds the daily snapshot, saves
// it, exports it and posts its summary. Only a failed snapshot stops the
// run; other failures are logged and joined into the returned error.
func (s *Scheduler) RunAccrual(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("storage accrual started")

	var errs []error

	if _, err := s.refresher.RefreshOpenRecords(ctx); err != nil {
		s.logger.Error("failed to refresh open records", zap.Error(err))
		errs = append(errs, err)
	}

	snapshot, err := s.reporter.BuildSnapshot(ctx)
	if err != nil {
		s.logger.Error("failed to build storage fee snapshot", zap.Error(err))
		s.record(outcomeFailure, models.StorageFeeSnapshot{})
		return errors.Join(append(errs, err)...)
	}

	if err := s.reporter.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to save storage fee snapshot", zap.Error(err))
		errs = append(errs, err)
	}

	if s.export {
		if err := s.reporter.ExportSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("failed to export storage fee snapshot", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if s.notifier != nil {
		msg := webhook.Message{Title: notificationTitle, Text: s.reporter.Summary(snapshot)}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send storage fee summary", zap.Error(err))
			errs = append(errs, err)
		}
	}

	outcome := outcomeSuccess
	if len(errs) > 0 {
		outcome = outcomePartial
	}
	s.record(outcome, snapshot)

	s.logger.Info("storage accrual finished",
		zap.String("outcome", outcome),
		zap.Int("in_warehouse", snapshot.InWarehouseCount),
		zap.Float64("accrued_fee", snapshot.AccruedFee),
		zap.Duration("duration", time.Since(start)),
	)
	return errors.Join(errs...)
}

func (s *Scheduler) record(outcome string, snapshot models.StorageFeeSnapshot) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordAccrualRun(outcome, snapshot.InWarehouseCount, snapshot.AccruedFee, snapshot.ExtendedTierCount)
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
