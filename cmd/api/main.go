package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	httphandlers "zvit/internal/interfaces/http"
	"zvit/internal/interfaces/scheduler"
	"zvit/internal/shared/config"
	"zvit/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Initialize telemetry (if enabled)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
		log.Println("Telemetry initialized")
	}

	deps, err := NewDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// The scheduler owns the worker pool that runs statement syncs. Scheduled
	// runs iterate every user with a stored token; on-demand syncs from the
	// HTTP API go through the same pool so the per-user rate limit holds.
	sched, err := scheduler.New(scheduler.Config{
		ScheduleTimes: cfg.Scheduler.ScheduleTimes,
		WorkerCount:   cfg.Scheduler.WorkerCount,
		JobDelay:      cfg.Scheduler.JobDelay,
		QueueSize:     cfg.Scheduler.QueueSize,
		RunOnStartup:  cfg.Scheduler.RunOnStartup,
		JobProvider:   syncJobProvider(deps),
	})
	if err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		sched.Start()
		log.Printf("Scheduler started with times: %v", cfg.Scheduler.ScheduleTimes)
	} else {
		// On-demand syncs still need workers even without scheduled runs.
		sched.WorkerPool().Start()
		log.Println("Scheduler is disabled, worker pool running for on-demand syncs")
	}

	deps.StatementHandler = httphandlers.NewStatementHandler(deps.SyncService, sched.WorkerPool())

	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg))

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, redirectSrv, sched, 30*time.Second)
	return nil
}

// syncJobProvider builds the scheduled job batch: one incremental sync per
// user with a stored bank token.
func syncJobProvider(deps *Dependencies) func(context.Context) ([]scheduler.Job, error) {
	return func(ctx context.Context) ([]scheduler.Job, error) {
		users, err := deps.UserRepo.ListWithToken(ctx)
		if err != nil {
			return nil, err
		}

		jobs := make([]scheduler.Job, 0, len(users))
		for _, u := range users {
			jobs = append(jobs, scheduler.NewIncrementalSyncJob(u.ID, deps.SyncService))
		}
		return jobs, nil
	}
}
