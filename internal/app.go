package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"onlinesync/internal/scheduler/interfaces"
	"onlinesync/internal/services"
	"onlinesync/internal/structures"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	conf      *structures.Config
	logger    providers.Logger
	service   services.SyncServiceInterface
	scheduler interfaces.SchedulerInterface
	routes    http.Handler

	WebServer *http.Server
}

func NewApp(conf *structures.Config, logger providers.Logger, service services.SyncServiceInterface, scheduler interfaces.SchedulerInterface, routes http.Handler) *App {
	return &App{
		conf:      conf,
		logger:    logger,
		service:   service,
		scheduler: scheduler,
		routes:    routes,
	}
}

// RunOnce performs a single sync cycle. SIGINT or SIGTERM cancel it; the
// summary of whatever finished is still returned.
func (a *App) RunOnce(ctx context.Context) models.Summary {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Infof(providers.TypeApp, "Starting %s, single cycle", a.conf.AppName)
	return a.service.RunCycle(ctx)
}

// Watch runs cycles on the configured interval until ctx is done or a signal
// arrives. The first signal lets the running cycle finish; a second one
// cancels it.
func (a *App) Watch(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s, watching every %s", a.conf.AppName, a.conf.Schedule.Interval)

	serverErr := make(chan error, 1)
	if a.conf.Metrics.Listen != "" {
		a.WebServer = &http.Server{
			Addr:         a.conf.Metrics.Listen,
			Handler:      a.routes,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.conf.Metrics.Listen)
			if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	cycleCtx, cancelCycle := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelCycle()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	if err := a.scheduler.Init(cycleCtx); err != nil {
		a.shutdownServer()
		return err
	}

	var runErr error
	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received, waiting for the running cycle")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Context done, stopping")
		cancelCycle()
	}

	stopped := make(chan struct{})
	go func() {
		select {
		case <-stop:
			a.logger.Warnf(providers.TypeApp, "Second signal received, cancelling the running cycle")
			cancelCycle()
		case <-stopped:
		}
	}()

	a.scheduler.Stop()
	close(stopped)
	a.shutdownServer()

	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return runErr
}

func (a *App) shutdownServer() {
	if a.WebServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.WebServer.Shutdown(ctx); err != nil {
		a.logger.Errorf(providers.TypeApp, "Server shutdown: %s", err)
	}
}
