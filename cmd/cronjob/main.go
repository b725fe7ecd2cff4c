package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	grpcapi "rentnest-backend/internal/api/grpc"
	"rentnest-backend/internal/app"
	"rentnest-backend/internal/config"
	"rentnest-backend/internal/jobs"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'rent-cycle', 'rent-overdue-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentNest Cronjob Runner...", "log_level", cfg.Log.Level)
	if cfg.Store.Type == "memory" {
		logger.Warn("Cronjob is running on a private in-memory store; it will not see server data")
	}

	ctx := context.Background()

	// Initialize Repositories
	store, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	challenges, closeChallenges, err := app.ChallengeStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer closeChallenges()

	// Initialize Services
	services := app.NewServices(cfg, store, app.Notifier(ctx, cfg, store.Users()), challenges)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{RentCycle: services.RentCycle}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Catch up on anything missed while the runner was down
	jobRunner.RunRentCycle()

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Health endpoint for the orchestrator
	var grpcServer *grpcapi.Server
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer = grpcapi.NewServer(grpcapi.ServiceScheduler)
		grpcServer.MarkServing(grpcapi.ServiceScheduler)
		go func() {
			logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	if grpcServer != nil {
		grpcServer.Shutdown()
	}
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "rent-cycle":
		jobRunner.RunRentCycle()
	case "rent-overdue-reminders":
		jobRunner.SendRentOverdueReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - rent-cycle\n")
		fmt.Printf("  - rent-overdue-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
