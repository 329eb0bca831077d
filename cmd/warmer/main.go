package main

import (
	"context"
	"database/sql"
	"flag"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotelmap/internal/adapters/geocode"
	"hotelmap/internal/adapters/observability"
	redisad "hotelmap/internal/adapters/redis"
	"hotelmap/internal/app"
	"hotelmap/internal/shared"
	mysqlrepo "hotelmap/internal/storage/mysql"
)

// warmer pre-fills the shared coordinate cache for every published hotel so the
// map endpoint answers from cache on first use.
func main() {
	limit := flag.Int("limit", 0, "max hotels to warm (0 = all)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Int("workers", cfg.WarmWorkers).
		Int("limit", *limit).
		Msg("warmer starting")

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required: warming an in-process cache has no effect")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	defer cache.Close()

	geo, err := geocode.New(cfg.GeocodeBase, cfg.GeocodeKey, cfg.GeocodeRPS, cfg.GeocodeTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoder")
	}

	svc := app.NewMapService(mysqlrepo.New(db), geo, cache, app.NewResolver(nil, nil), nil, app.Options{
		CacheTTL: cfg.GeocodeCacheTTL,
	})
	hotels, err := svc.PublishedHotels(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("load hotels failed")
	}

	start := time.Now()
	sem := semaphore.NewWeighted(int64(max(cfg.WarmWorkers, 1)))
	var wg sync.WaitGroup
	var warmed, skipped atomic.Int64

	for _, h := range hotels {
		h := h
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("warming interrupted")
			break
		}

		wg.Add(1)
		go func(sabreID string) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := svc.WarmCoordinates(ctx, h)
			if err != nil {
				log.Warn().Str("sabre_id", sabreID).Err(err).Msg("warm failed")
				skipped.Add(1)
				return
			}
			if !ok {
				log.Debug().Str("sabre_id", sabreID).Msg("no coordinates")
				skipped.Add(1)
				return
			}
			warmed.Add(1)
		}(h.SabreID)
	}

	wg.Wait()
	log.Info().
		Int("hotels", len(hotels)).
		Int64("warmed", warmed.Load()).
		Int64("skipped", skipped.Load()).
		Dur("took", time.Since(start)).
		Msg("warming completed")
}
