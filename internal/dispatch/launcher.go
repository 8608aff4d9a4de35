package dispatch

import (
	"context"
	"log/slog"
)

// Launcher triggers one worker invocation after a job has been enqueued.
// Triggering is fire-and-forget and at-least-once from the dispatcher's
// perspective: duplicate triggers are safe because the job store's claim
// operation deduplicates the actual work.
type Launcher interface {
	// Launch starts one worker invocation. It must not block on the work
	// itself; the returned error covers the trigger only.
	Launch(ctx context.Context) error
}

// GoroutineLauncher runs one worker invocation in-process per trigger.
// It is the in-process stand-in for a one-task-per-trigger compute launch;
// deployments with an external scheduler use NoopLauncher instead and run
// cmd/worker on a schedule.
type GoroutineLauncher struct {
	run    func(ctx context.Context) (bool, error)
	logger *slog.Logger
}

// NewGoroutineLauncher creates a launcher that calls run in a new goroutine
// on every trigger. run is typically a worker's RunOnce.
func NewGoroutineLauncher(run func(ctx context.Context) (bool, error), log *slog.Logger) *GoroutineLauncher {
	if run == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("run cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &GoroutineLauncher{
		run:    run,
		logger: log.With(slog.String("component", "goroutine_launcher")),
	}
}

// Ensure GoroutineLauncher implements Launcher
var _ Launcher = (*GoroutineLauncher)(nil)

// Launch implements Launcher.Launch
//
// The invocation runs on a background context, detached from the request
// that triggered it: generation outlives the HTTP request by minutes.
func (l *GoroutineLauncher) Launch(ctx context.Context) error {
	go func() {
		defer func() {
			if p := recover(); p != nil {
				l.logger.Error("worker invocation panicked",
					slog.Any("panic", p))
			}
		}()

		didWork, err := l.run(context.Background())
		if err != nil {
			l.logger.Error("worker invocation failed",
				slog.String("error", err.Error()))
			return
		}

		l.logger.Debug("worker invocation finished",
			slog.Bool("did_work", didWork))
	}()

	return nil
}

// NoopLauncher satisfies Launcher without triggering anything. Used when an
// external scheduler polls for work by invoking cmd/worker, and in tests.
type NoopLauncher struct{}

// Ensure NoopLauncher implements Launcher
var _ Launcher = (*NoopLauncher)(nil)

// Launch implements Launcher.Launch
func (NoopLauncher) Launch(context.Context) error {
	return nil
}
