package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelmap/internal/adapters/gazetteer"
	"hotelmap/internal/adapters/geocode"
	server "hotelmap/internal/adapters/http_server"
	"hotelmap/internal/adapters/mediastore"
	"hotelmap/internal/adapters/memcache"
	"hotelmap/internal/adapters/observability"
	redisad "hotelmap/internal/adapters/redis"
	"hotelmap/internal/app"
	"hotelmap/internal/domain"
	"hotelmap/internal/shared"
	mysqlrepo "hotelmap/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// coordinate cache: redis when configured, in-process otherwise
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		defer rc.Close()
		cache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("coordinate cache: redis")
	} else {
		cache = memcache.New(cfg.GeocodeCacheTTL, 10*time.Minute)
		log.Info().Msg("coordinate cache: in-memory")
	}

	// geocoder stays nil without a key; the endpoint then answers missing_env
	var geo domain.Geocoder
	if gc, err := geocode.New(cfg.GeocodeBase, cfg.GeocodeKey, cfg.GeocodeRPS, cfg.GeocodeTimeout); err != nil {
		log.Error().Err(err).Msg("geocoder disabled")
	} else {
		geo = gc
	}

	// deps
	repo := mysqlrepo.New(db)
	resolver := app.NewResolver(gazetteer.New(gazetteer.DefaultPlaces), app.DefaultAliases)
	var media domain.MediaURLBuilder
	if cfg.MediaBaseURL != "" {
		media = mediastore.New(cfg.MediaBaseURL, cfg.MediaBucket)
	}
	svc := app.NewMapService(repo, geo, cache, resolver, media, app.Options{
		GeocodeWorkers: cfg.GeocodeWorkers,
		QueryWorkers:   cfg.QueryWorkers,
		CacheTTL:       cfg.GeocodeCacheTTL,
		Deadline:       cfg.RequestDeadline,
	})

	// http
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Maps: svc})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
