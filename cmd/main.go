package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/handlers"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
	"github.com/Deratheone/Signal-Hunt/internal/repository"
	repodb "github.com/Deratheone/Signal-Hunt/internal/repository/db"
	"github.com/Deratheone/Signal-Hunt/internal/server"
	"github.com/Deratheone/Signal-Hunt/internal/service"
	"github.com/Deratheone/Signal-Hunt/internal/source"
)

// sampleBuffer sizes the fan-in channel between sources and the tracker.
// A full buffer drops samples, which the wireless channel already allows.
const sampleBuffer = 256

func main() {
	// load config.yml
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)

	// open DB
	db, err := repodb.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func(db *sql.DB) {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}(db)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(db)
	services, err := service.NewService(ctx, repos, cfg, log)
	if err != nil {
		log.Fatalw("failed to build services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, log)

	// fan-in channel and the configured sample source
	samples := make(chan models.Sample, sampleBuffer)
	src, err := buildSource(cfg, log)
	if err != nil {
		log.Fatalw("failed to build sample source", "err", err)
	}

	// start the ingestion pipeline
	go runSource(ctx, src, samples, log)
	go services.Tracker.Run(ctx, samples)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// buildSource selects the configured sample transport.
func buildSource(cfg *config.Config, log *logger.Logger) (source.Source, error) {
	switch cfg.Source.Mode {
	case config.SourceUDP:
		return source.NewUDPSource(cfg.Source.UDP, log), nil
	case config.SourceMQTT:
		return source.NewMQTTSource(cfg.Source.MQTT, log), nil
	case config.SourceSim:
		return source.NewSimSource(cfg.BeaconRecords(), cfg.Calibration, 0, log), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}
}

// runSource runs the sample transport. If the transport cannot start, no
// sample can ever arrive, so that is fatal to the process.
func runSource(ctx context.Context, src source.Source, samples chan<- models.Sample, log *logger.Logger) {
	if err := src.Run(ctx, samples); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalw("sample source failed", "source", src.Name(), "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
