package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"repricer/internal/app"
	"repricer/internal/config"
	"repricer/internal/infrastructure/logger"
	"repricer/internal/pricing"
	"repricer/internal/pricing/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := os.Getenv("REPRICER_CONFIG")
	if path == "" {
		path = "internal/config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("invalid worker config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	backends, err := app.NewBackends(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("initialising backends", zap.Error(err))
	}
	defer backends.Close()

	// The worker never enqueues through the HTTP controller.
	module := pricing.NewModule(backends.Settings, backends.Locker, nil, cfg, zapLogger)

	runPass := jobs.NewRunPassHandler(module.UseCase, zapLogger)

	var cron []jobs.CronRegistration
	if cfg.Jobs.Cron != "" {
		task, err := jobs.NewRunPassTask(jobs.RunPassPayload{AllActive: true})
		if err != nil {
			zapLogger.Fatal("building scheduled pass", zap.Error(err))
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.Jobs.Cron,
			Task:    task,
			Options: []asynq.Option{asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3)},
		})
		zapLogger.Info("scheduled pricing pass registered", zap.String("cron", cfg.Jobs.Cron))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   jobs.RedisOpt(cfg.Redis),
		Logger:      zapLogger,
		Concurrency: cfg.Jobs.Concurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRunPass, Handler: runPass.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		zapLogger.Fatal("initialising worker", zap.Error(err))
	}

	zapLogger.Info("worker starting", zap.Int("concurrency", cfg.Jobs.Concurrency))
	if err := worker.Run(ctx); err != nil {
		zapLogger.Fatal("worker stopped", zap.Error(err))
	}
	zapLogger.Info("worker stopped gracefully")
}
