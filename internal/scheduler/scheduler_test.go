package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/warehouse/internal/config"
	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/pkg/clients/webhook"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshOpenRecords(context.Context) ([]models.WarehouseRecord, error) {
	f.calls++
	return nil, f.err
}

type fakeReporter struct {
	snapshot  models.StorageFeeSnapshot
	buildErr  error
	saveErr   error
	exportErr error
	steps     []string
}

func (f *fakeReporter) BuildSnapshot(context.Context) (models.StorageFeeSnapshot, error) {
	f.steps = append(f.steps, "build")
	return f.snapshot, f.buildErr
}

func (f *fakeReporter) SaveSnapshot(context.Context, models.StorageFeeSnapshot) error {
	f.steps = append(f.steps, "save")
	return f.saveErr
}

func (f *fakeReporter) ExportSnapshot(context.Context, models.StorageFeeSnapshot) error {
	f.steps = append(f.steps, "export")
	return f.exportErr
}

func (f *fakeReporter) Summary(models.StorageFeeSnapshot) string {
	return "summary text"
}

type fakeNotifier struct {
	sent []webhook.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg webhook.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeRecorder struct {
	outcomes []string
	accrued  float64
}

func (f *fakeRecorder) RecordAccrualRun(outcome string, _ int, accrued float64, _ int) {
	f.outcomes = append(f.outcomes, outcome)
	f.accrued = accrued
}

func testConfig(exportEnabled bool) config.Config {
	cfg := config.Config{
		Reporting: config.ReportingConfig{CronSchedule: "0 1 * * *", Timezone: "UTC"},
	}
	if exportEnabled {
		cfg.Sheets = config.SheetsConfig{CredentialsPath: "creds.json", SpreadsheetID: "sheet"}
	}
	return cfg
}

func newTestScheduler(t *testing.T, exportEnabled bool, refresher *fakeRefresher, reporter *fakeReporter, notifier webhook.Client, recorder *fakeRecorder) *Scheduler {
	t.Helper()
	s, err := NewScheduler(testConfig(exportEnabled), refresher, reporter, notifier, recorder, nil)
	require.NoError(t, err)
	return s
}

func TestRunAccrualSuccess(t *testing.T) {
	refresher := &fakeRefresher{}
	reporter := &fakeReporter{snapshot: models.StorageFeeSnapshot{InWarehouseCount: 3, AccruedFee: 12.5}}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	s := newTestScheduler(t, true, refresher, reporter, notifier, recorder)

	require.NoError(t, s.RunAccrual(context.Background()))

	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, []string{"build", "save", "export"}, reporter.steps)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, webhook.Message{Title: "Daily storage fees", Text: "summary text"}, notifier.sent[0])
	assert.Equal(t, []string{"success"}, recorder.outcomes)
	assert.Equal(t, 12.5, recorder.accrued)
}

func TestRunAccrualSkipsDisabledSteps(t *testing.T) {
	reporter := &fakeReporter{}
	recorder := &fakeRecorder{}
	s := newTestScheduler(t, false, &fakeRefresher{}, reporter, nil, recorder)

	require.NoError(t, s.RunAccrual(context.Background()))
	assert.Equal(t, []string{"build", "save"}, reporter.steps)
	assert.Equal(t, []string{"success"}, recorder.outcomes)
}

func TestRunAccrualContinuesAfterStepFailures(t *testing.T) {
	refreshErr := errors.New("refresh failed")
	saveErr := errors.New("save failed")
	refresher := &fakeRefresher{err: refreshErr}
	reporter := &fakeReporter{saveErr: saveErr}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	s := newTestScheduler(t, true, refresher, reporter, notifier, recorder)

	err := s.RunAccrual(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, refreshErr)
	assert.ErrorIs(t, err, saveErr)

	assert.Equal(t, []string{"build", "save", "export"}, reporter.steps)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, []string{"partial"}, recorder.outcomes)
}

func TestRunAccrualStopsWithoutSnapshot(t *testing.T) {
	buildErr := errors.New("db down")
	reporter := &fakeReporter{buildErr: buildErr}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	s := newTestScheduler(t, true, &fakeRefresher{}, reporter, notifier, recorder)

	err := s.RunAccrual(context.Background())
	assert.ErrorIs(t, err, buildErr)
	assert.Equal(t, []string{"build"}, reporter.steps)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, []string{"failure"}, recorder.outcomes)
}

func TestNewSchedulerRejectsBadTimezone(t *testing.T) {
	cfg := testConfig(false)
	cfg.Reporting.Timezone = "Nowhere/Land"

	_, err := NewScheduler(cfg, &fakeRefresher{}, &fakeReporter{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(false)
	cfg.Reporting.CronSchedule = "every day"

	s, err := NewScheduler(cfg, &fakeRefresher{}, &fakeReporter{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(t, false, &fakeRefresher{}, &fakeReporter{}, nil, nil)

	require.NoError(t, s.Start())
	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Next.After(time.Now()))

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
