package sweeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"

	"chatsync/pkg/config"
	"chatsync/pkg/identity"
	"chatsync/pkg/logger"
	"chatsync/pkg/state"
)

// The sweeper periodically drops expired avatar cache entries so a
// long-running process does not accumulate identities it will never render
// again. Scheduling uses cron syntax; the default runs hourly.

var registered *identity.Resolver

// SetResolver stores the resolver so admin triggers and tests can invoke
// sweeps on demand.
func SetResolver(r *identity.Resolver) { registered = r }

// RunImmediate triggers a single sweep using the registered resolver.
func RunImmediate() (int, error) {
	if registered == nil {
		return 0, fmt.Errorf("no resolver registered for sweep")
	}
	removed := registered.Sweep()
	logger.Info("avatar_sweep_done", "removed", removed, "remaining", registered.Size())
	return removed, nil
}

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.SweeperConfig, resolver *identity.Resolver) (context.CancelFunc, error) {
	if !cfg.Enabled || resolver == nil {
		logger.Info("sweeper_disabled")
		return func() {}, nil
	}
	SetResolver(resolver)

	sweepDir := state.PathsVar.Sweeper
	if sweepDir == "" {
		sweepDir = "./state/sweeper"
	}
	if err := os.MkdirAll(sweepDir, 0o700); err != nil {
		logger.Error("sweeper_path_create_failed", "path", sweepDir, "error", err)
		return nil, err
	}

	// a lock file keeps two processes sharing an archive from both sweeping
	lockPath := cfg.LockFile
	if lockPath == "" {
		lockPath = filepath.Join(sweepDir, "sweep.lock")
	}
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			logger.Warn("sweeper_lock_held", "path", lockPath)
			return func() {}, nil
		}
		return nil, err
	}
	fmt.Fprintf(lock, "%d\n", os.Getpid())
	lock.Close()

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		_ = os.Remove(lockPath)
		logger.Error("sweeper_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid sweeper cron expression: %s", cfg.Cron)
	}

	logger.Info("sweeper_enabled", "cron", cronExpr, "path", sweepDir)
	ctx2, cancel := context.WithCancel(ctx)
	go func() {
		defer os.Remove(lockPath)
		runScheduler(ctx2, cronExpr)
	}()
	return cancel, nil
}

// runScheduler computes the next tick for the cron expression and sleeps
// until that time, yielding sharp scheduling with full cron syntax.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweeper_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweeper_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("sweeper_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if _, err := RunImmediate(); err != nil {
				logger.Error("sweep_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("sweeper_stopping")
			return
		}
	}
}
