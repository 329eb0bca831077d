package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	GeocodeBase     string
	GeocodeKey      string
	GeocodeRPS      int
	GeocodeTimeout  time.Duration
	GeocodeWorkers  int
	QueryWorkers    int
	GeocodeCacheTTL time.Duration
	RequestDeadline time.Duration

	MediaBaseURL string
	MediaBucket  string

	WarmWorkers int
}

// Load reads the environment, after merging a local .env file when one exists.
// Variables already set in the process environment win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		HTTPTimeout: seconds("HTTP_TIMEOUT_SECONDS", 20),

		MySQLDSN:  env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotelmap?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		GeocodeBase:     env("GEOCODE_BASE_URL", ""),
		GeocodeKey:      env("GEOCODE_API_KEY", ""),
		GeocodeRPS:      atoi("GEOCODE_RPS", 10),
		GeocodeTimeout:  seconds("GEOCODE_TIMEOUT_SECONDS", 8),
		GeocodeWorkers:  atoi("GEOCODE_WORKERS", 5),
		QueryWorkers:    atoi("QUERY_WORKERS", 4),
		GeocodeCacheTTL: seconds("GEOCODE_CACHE_TTL_SECONDS", 7*24*3600),
		RequestDeadline: seconds("REQUEST_DEADLINE_SECONDS", 12),

		MediaBaseURL: env("MEDIA_BASE_URL", ""),
		MediaBucket:  env("MEDIA_BUCKET", "hotel-media"),

		WarmWorkers: atoi("WARM_WORKERS", 8),
	}
	if c.GeocodeKey == "" {
		log.Warn().Msg("GEOCODE_API_KEY is empty; map markers will fail with missing_env")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func seconds(k string, def int) time.Duration {
	return time.Duration(atoi(k, def)) * time.Second
}
