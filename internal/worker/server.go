package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	"github.com/fanfie/fanfie-api/internal/service"
)

// orphanSweepSchedule runs the nightly sweep at 3 AM UTC
const orphanSweepSchedule = "0 3 * * *"

// Dependencies holds what the cleanup workers need
type Dependencies struct {
	ImageRepo service.ImageRepository
	Objects   service.ObjectStore
}

// Server runs the background task processors and the periodic scheduler
type Server struct {
	logger    *zap.Logger
	config    *config.Config
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	client    *asynq.Client
}

// NewServer creates a worker server processing the cleanup task types.
// Queue weights favor critical work 6:3:1 over the default and low queues.
func NewServer(logger *zap.Logger, cfg *config.Config, deps *Dependencies) (*Server, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queues := map[string]int{
		cfg.Worker.QueueCritical: 6,
		cfg.Worker.QueueDefault:  3,
		cfg.Worker.QueueLow:      1,
	}

	logTaskError := func(_ context.Context, task *asynq.Task, err error) {
		logger.Error("task processing failed",
			zap.String("type", task.Type()),
			zap.Error(err),
		)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:  cfg.Worker.Concurrency,
		Queues:       queues,
		ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
		Logger:       asynqLogger{logger},
	})

	cleanup := NewCleanupWorker(logger, deps.ImageRepo, deps.Objects)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOrganizationCleanup, cleanup.ProcessOrganizationCleanupTask)
	mux.HandleFunc(TypeObjectRemoval, cleanup.ProcessObjectRemovalTask)
	mux.HandleFunc(TypeOrphanSweep, cleanup.ProcessOrphanSweepTask)

	return &Server{
		logger:    logger,
		config:    cfg,
		server:    server,
		mux:       mux,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		client:    asynq.NewClient(redisOpt),
	}, nil
}

// Start registers the periodic tasks and runs the server until Stop
func (s *Server) Start() error {
	sweep, err := NewOrphanSweepTask(&OrphanSweepPayload{})
	if err != nil {
		return err
	}
	if _, err := s.scheduler.Register(orphanSweepSchedule, sweep, asynq.Queue(s.config.Worker.QueueLow)); err != nil {
		return fmt.Errorf("failed to register orphan sweep task: %w", err)
	}

	go func() {
		if err := s.scheduler.Run(); err != nil {
			s.logger.Error("scheduler stopped", zap.Error(err))
		}
	}()

	s.logger.Info("starting worker server",
		zap.Int("concurrency", s.config.Worker.Concurrency),
	)

	return s.server.Run(s.mux)
}

// Stop shuts down the server, scheduler, and client
func (s *Server) Stop() {
	s.server.Shutdown()
	s.scheduler.Shutdown()
	s.client.Close()
}

// Client returns the asynq client for enqueuing tasks
func (s *Server) Client() *asynq.Client {
	return s.client
}

// asynqLogger adapts zap.Logger to asynq.Logger
type asynqLogger struct {
	l *zap.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal(fmt.Sprint(args...)) }
