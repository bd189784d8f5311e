package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/env"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
)

type Config struct {
	Auth    authConfig
	DB      store.PostgresConfig
	Migrate bool
	HTTP    httpConfig
	Images  imageConfig
	Journal journalConfig
	Cache   cacheConfig
	Redis   redisConfig
	Log     logConfig
}

type authConfig struct {
	Secret     string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type imageConfig struct {
	Root      string
	ServeRoot *url.URL
	MaxSize   int64
}

type journalConfig struct {
	// TZOffset is the fixed offset from UTC that decides which calendar day "today" is.
	TZOffset time.Duration
}

// Location returns the reference time zone for day boundaries.
func (c journalConfig) Location() *time.Location {
	secs := int(c.TZOffset / time.Second)
	sign := "+"
	if secs < 0 {
		sign = "-"
	}
	abs := max(secs, -secs)
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, abs/3600, abs%3600/60)
	return time.FixedZone(name, secs)
}

type cacheConfig struct {
	OwnerKeys   int64
	OwnerCost   int64
	SummaryKeys int64
	SummaryCost int64
	SummaryTTL  time.Duration
}

type redisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis server was configured.
func (c redisConfig) Enabled() bool {
	return c.Host != ""
}

func (c redisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type logConfig struct {
	Level  string
	Format string
}

func FromEnv() Config {
	return Config{
		Auth: authConfig{
			Secret:     env.RequireString("AUTH_SECRET"),
			TokenTTL:   env.Duration("AUTH_TOKEN_TTL", 24*time.Hour),
			Issuer:     env.String("AUTH_TOKEN_ISSUER", "lucid"),
			BcryptCost: env.Int("AUTH_BCRYPT_COST", 12),
		},
		DB: store.PostgresConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.String("DB_PORT", "5432"),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", "password"),
			DB:       env.String("DB_NAME", "lucid"),
		},
		Migrate: env.Bool("DB_MIGRATE", false),
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  env.StringSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
		},
		Images: imageConfig{
			Root:      env.String("IMAGE_ROOT", "./images"),
			ServeRoot: env.Url("IMAGE_SERVE_ROOT", &url.URL{Scheme: "http", Host: "localhost:8080", Path: "/images/"}),
			MaxSize:   env.Int64("IMAGE_MAX_SIZE", 5*1024*1024),
		},
		Journal: journalConfig{
			TZOffset: env.Duration("JOURNAL_TZ_OFFSET", -5*time.Hour),
		},
		Cache: cacheConfig{
			OwnerKeys:   env.Int64("CACHE_OWNER_KEYS", 10000),
			OwnerCost:   env.Int64("CACHE_OWNER_COST", 10000),
			SummaryKeys: env.Int64("CACHE_SUMMARY_KEYS", 10000),
			SummaryCost: env.Int64("CACHE_SUMMARY_COST", 100000),
			SummaryTTL:  env.Duration("CACHE_SUMMARY_TTL", 10*time.Minute),
		},
		Redis: redisConfig{
			Host:     env.String("REDIS_HOST", ""),
			Port:     env.Int("REDIS_PORT", 6379),
			Password: env.String("REDIS_PASSWORD", ""),
			DB:       env.Int("REDIS_DB", 0),
		},
		Log: logConfig{
			Level:  env.String("LOG_LEVEL", "info"),
			Format: env.String("LOG_FORMAT", "json"),
		},
	}
}
