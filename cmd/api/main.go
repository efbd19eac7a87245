package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-api/internal/config"
	"github.com/jwalitptl/patient-api/internal/handler"
	patientHandler "github.com/jwalitptl/patient-api/internal/handler/patient"
	"github.com/jwalitptl/patient-api/internal/repository"
	"github.com/jwalitptl/patient-api/internal/repository/jsonfile"
	"github.com/jwalitptl/patient-api/internal/repository/postgres"
	"github.com/jwalitptl/patient-api/internal/router"
	patientService "github.com/jwalitptl/patient-api/internal/service/patient"
	"github.com/jwalitptl/patient-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	store, err := newRecordStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize record store")
	}

	patientSvc := patientService.NewService(store)

	systemH := handler.NewHandler()
	patientH := patientHandler.NewHandler(patientSvc)

	routerCfg := router.DefaultConfig()
	routerCfg.RateLimitRPS = cfg.RateLimit.RPS
	routerCfg.RateLimitBurst = cfg.RateLimit.Burst
	routerCfg.RequestTimeout = cfg.Server.Timeout()

	r := router.NewRouter(systemH, patientH, routerCfg)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func newRecordStore(cfg *config.Config) (repository.RecordStore, error) {
	switch cfg.Store.Driver {
	case "jsonfile", "":
		return jsonfile.NewStore(cfg.Store.Path), nil
	case "postgres":
		db, err := postgres.NewDB(cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
