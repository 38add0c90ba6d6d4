package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/api"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/config"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/monitoring"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/notify"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/service"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env: %v", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, cleanup, err := initializeRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer cleanup()

	hub := notify.NewHub()
	notifiers := notify.Fanout{hub}
	if cfg.AMQP.URL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to broker: %v", err)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	orders := service.NewOrders(repo, notifiers)

	pacing := monitoring.NewPacingMonitor(repo, cfg.Pacing.CourseThreshold.Std())
	stopPacing, err := pacing.Start(ctx, cfg.Pacing.Schedule)
	if err != nil {
		log.Fatalf("Failed to start pacing monitor: %v", err)
	}
	defer stopPacing()

	apiServer := api.NewServer(orders, hub, pacing, cfg.TaxRate)

	go startMetricsServer(cfg.Server.MetricsPort)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func initializeRepository(cfg *config.Config) (repository.OrderRepository, func(), error) {
	if cfg.Database.Dialect == "" {
		log.Println("No database configured, using in-memory order store")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	repo, err := repository.NewGormRepository(cfg.Database.Dialect, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}, nil
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
