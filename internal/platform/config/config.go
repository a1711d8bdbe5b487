package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminAPIToken string
	LogLevel      string
	LogFormat     string
}

// Auth captures token and credential settings.
type Auth struct {
	JWTSigningKey      string
	JWTIssuer          string
	UserTokenTTL       time.Duration
	AdminTokenTTL      time.Duration
	AdminDefaultStatus string
	BcryptCost         int
}

// Database holds one DSN per store; an empty DSN selects the in-memory store.
type Database struct {
	IdentityURL     string
	BusURL          string
	AirURL          string
	TrainURL        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the role cache backend. Empty URL keeps the cache in-process.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RoleCacheTTL time.Duration
}

// Events configures the provisioning side channel.
type Events struct {
	Sink             string
	KafkaBrokers     []string
	KafkaTopic       string
	RabbitMQURL      string
	RabbitMQExchange string
	BufferSize       int
	PublishTimeout   time.Duration
}

// History configures the ticket-history aggregator.
type History struct {
	Timeout           time.Duration
	EnrichConcurrency int
	// Location names the IANA zone that decides "today" for journeyPassed.
	// Empty uses the process local zone.
	Location string
}

// RateLimit throttles signup and login per client address. A zero AuthLimit
// disables throttling.
type RateLimit struct {
	AuthLimit int
	Window    time.Duration
	// TrustedProxies lists CIDRs whose forwarding headers name the client.
	TrustedProxies []string
}

// Config is the full process configuration.
type Config struct {
	Server    Server
	Auth      Auth
	Database  Database
	Redis     RedisConfig
	Events    Events
	History   History
	RateLimit RateLimit
}

// Load reads an optional .env file and builds Config from the environment so main stays lean.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv builds Config from environment variables, applying development defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          getString("ACCOUNT_ADDR", ":8080"),
			AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
			LogLevel:      getString("LOG_LEVEL", "info"),
			LogFormat:     getString("LOG_FORMAT", "json"),
		},
		Auth: Auth{
			// Development default; production deployments must override it.
			JWTSigningKey:      getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:          getString("JWT_ISSUER", "tickethub-account"),
			UserTokenTTL:       getDuration("USER_TOKEN_TTL", time.Hour),
			AdminTokenTTL:      getDuration("ADMIN_TOKEN_TTL", 24*time.Hour),
			AdminDefaultStatus: strings.ToLower(getString("ADMIN_DEFAULT_STATUS", "pending")),
			BcryptCost:         getInt("BCRYPT_COST", 10),
		},
		Database: Database{
			IdentityURL:     os.Getenv("IDENTITY_DATABASE_URL"),
			BusURL:          os.Getenv("BUS_DATABASE_URL"),
			AirURL:          os.Getenv("AIR_DATABASE_URL"),
			TrainURL:        os.Getenv("TRAIN_DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			RoleCacheTTL: getDuration("ROLE_CACHE_TTL", 10*time.Minute),
		},
		Events: Events{
			Sink:             strings.ToLower(getString("EVENTS_SINK", "log")),
			KafkaBrokers:     getList("KAFKA_BROKERS"),
			KafkaTopic:       getString("KAFKA_TOPIC", "admin-events"),
			RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
			RabbitMQExchange: getString("RABBITMQ_EXCHANGE", "admin_events"),
			BufferSize:       getInt("EVENTS_BUFFER", 1024),
			PublishTimeout:   getDuration("EVENTS_PUBLISH_TIMEOUT", 5*time.Second),
		},
		History: History{
			Timeout:           getDuration("HISTORY_TIMEOUT", 5*time.Second),
			EnrichConcurrency: getInt("HISTORY_ENRICH_CONCURRENCY", 8),
			Location:          os.Getenv("HISTORY_LOCATION"),
		},
		RateLimit: RateLimit{
			AuthLimit:      getInt("RATE_LIMIT_AUTH", 10),
			Window:         getDuration("RATE_LIMIT_WINDOW", time.Minute),
			TrustedProxies: getList("RATE_LIMIT_TRUSTED_PROXIES"),
		},
	}
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
