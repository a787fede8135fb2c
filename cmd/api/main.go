package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"portal/internal/adapter/repo"
	"portal/internal/domain"
	"portal/internal/http/handlers"
	"portal/internal/http/httpapi"
	"portal/internal/infra"
	"portal/internal/infra/geoip"
	"portal/internal/middleware"
	"portal/internal/review"
)

func main() {
	// Load .env (optional).
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	tasks := repo.NewTaskRepository(dbpool)
	assets := repo.NewAssetVersionRepository(dbpool)

	var audit domain.AuditLog = repo.NewAuditLog(dbpool)
	if cfg.AuditSink == "log" {
		audit = infra.NewLogAuditSink(logger)
	}
	sessions := review.NewManager(cfg.SessionIdleTimeout, audit)

	// GeoIP enrichment is optional; without a database the audit events
	// simply carry no country.
	var geo middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver disabled")
	} else if resolver != nil {
		defer resolver.Close()
		geo = resolver.CountryCode
	}

	app := handlers.NewApp(tasks, assets, audit, sessions, logger)
	router := httpapi.NewRouter(app, cfg, logger, geo)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
