package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/edgard/edubot/internal/bot/tasks"
	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/database"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsEnabledTasks(t *testing.T) {
	ran := make(chan struct{}, 8)
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"tick": func(ctx context.Context) error {
			ran <- struct{}{}
			return nil
		},
		"never": func(ctx context.Context) error {
			t.Error("disabled task ran")
			return nil
		},
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"tick":    {Enabled: true, Schedule: "* * * * * *"},
		"never":   {Enabled: false, Schedule: "* * * * * *"},
		"missing": {Enabled: true, Schedule: "* * * * * *"},
	}}

	s, err := NewScheduler(quietLogger(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second start must fail")

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("enabled task did not run")
	}

	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}

func TestScheduler_InvalidScheduleIsSkipped(t *testing.T) {
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"bad": {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"bad": func(context.Context) error { return nil },
	}

	s, err := NewScheduler(quietLogger(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Empty(t, s.scheduler.Jobs())
	require.NoError(t, s.Stop())
}

type stubStore struct {
	database.Store
	pingErr error
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

type blockingListener struct {
	started chan struct{}
}

func (l blockingListener) Start(ctx context.Context) {
	close(l.started)
	<-ctx.Done()
}

type returningListener struct{}

func (returningListener) Start(context.Context) {}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(quietLogger(), &config.SchedulerConfig{}, nil)
	require.NoError(t, err)
	return s
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	listener := blockingListener{started: make(chan struct{})}
	b := NewBot(quietLogger(), stubStore{}, listener, newTestScheduler(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	<-listener.started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBot_RunFailsWhenListenerExits(t *testing.T) {
	b := NewBot(quietLogger(), stubStore{}, returningListener{}, newTestScheduler(t))
	err := b.Run(context.Background())
	assert.Error(t, err)
}

func TestBot_RunFailsWhenDatabaseDown(t *testing.T) {
	b := NewBot(quietLogger(), stubStore{pingErr: errors.New("unable to open database file")}, returningListener{}, nil)
	err := b.Run(context.Background())
	assert.ErrorContains(t, err, "database not reachable")
}
