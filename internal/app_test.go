package internal

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlinesync/internal/models"
	"onlinesync/internal/structures"
	"onlinesync/internal/testutil"
)

type appTestService struct {
	calls atomic.Int32
}

func (s *appTestService) RunCycle(ctx context.Context) models.Summary {
	s.calls.Add(1)
	return models.Summary{CycleID: "42", UsersFound: 3, Err: ctx.Err()}
}

type appTestScheduler struct {
	initErr error
	ctx     context.Context
	stopped atomic.Bool
}

func (s *appTestScheduler) Init(ctx context.Context) error {
	s.ctx = ctx
	return s.initErr
}

func (s *appTestScheduler) Stop()                        { s.stopped.Store(true) }
func (s *appTestScheduler) Last() (models.Summary, bool) { return models.Summary{}, false }

func appConf() *structures.Config {
	return &structures.Config{
		AppName:  "onlinesync",
		Schedule: structures.ScheduleConfig{Interval: time.Minute},
	}
}

func TestApp_RunOnce(t *testing.T) {
	svc := &appTestService{}
	app := NewApp(appConf(), &testutil.MockLogger{}, svc, &appTestScheduler{}, http.NotFoundHandler())

	summary := app.RunOnce(context.Background())

	assert.Equal(t, "42", summary.CycleID)
	assert.NoError(t, summary.Err)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestApp_WatchStopsOnContextDone(t *testing.T) {
	sched := &appTestScheduler{}
	app := NewApp(appConf(), &testutil.MockLogger{}, &appTestService{}, sched, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.True(t, sched.stopped.Load())
	require.NotNil(t, sched.ctx)
	assert.Error(t, sched.ctx.Err(), "cycle context is cancelled when the parent is done")
}

func TestApp_WatchReturnsInitError(t *testing.T) {
	sched := &appTestScheduler{initErr: errors.New("schedule interval must be positive")}
	app := NewApp(appConf(), &testutil.MockLogger{}, &appTestService{}, sched, http.NotFoundHandler())

	err := app.Watch(context.Background())

	assert.EqualError(t, err, "schedule interval must be positive")
	assert.False(t, sched.stopped.Load())
}

func TestApp_WatchServesStatus(t *testing.T) {
	conf := appConf()
	conf.Metrics.Listen = "127.0.0.1:0"
	app := NewApp(conf, &testutil.MockLogger{}, &appTestService{}, &appTestScheduler{}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	require.NotNil(t, app.WebServer)
	assert.Equal(t, "127.0.0.1:0", app.WebServer.Addr)
}
