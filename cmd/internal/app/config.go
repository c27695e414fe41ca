package app

import "time"

// Config contains all runtime configuration for the server process.
// Subsystems (session, password, auth API) load their own settings.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	// DatabaseURL selects the credential store:
	// postgres:// or postgresql:// -> Postgres, sqlite://path or file: -> SQLite,
	// empty -> in-memory.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// DBConnectAttempts bounds startup connection attempts to Postgres.
	DBConnectAttempts int

	// AutoMigrate applies embedded Postgres migrations at startup.
	// SQLite databases are always migrated.
	AutoMigrate bool

	// If true:
	// - /readyz returns 503 unless a persistent store is configured and reachable.
	ReadinessRequireDB bool

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  envString("AUTHGATE_HTTP_ADDR", "0.0.0.0:3000"),
		LogLevel:  envString("AUTHGATE_LOG_LEVEL", "info"),
		LogFormat: envString("AUTHGATE_LOG_FORMAT", "json"),

		ReadHeaderTimeout: envDuration("AUTHGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       envDuration("AUTHGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      envDuration("AUTHGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       envDuration("AUTHGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   envDuration("AUTHGATE_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: envPositiveInt("AUTHGATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: envString("AUTHGATE_DATABASE_URL", ""),
		DBMaxConns:  envPoolSize("AUTHGATE_DB_MAX_CONNS", 10),
		DBMinConns:  envPoolSize("AUTHGATE_DB_MIN_CONNS", 0),

		DBConnectAttempts: envPositiveInt("AUTHGATE_DB_CONNECT_ATTEMPTS", 5),

		AutoMigrate: envBool("AUTHGATE_AUTO_MIGRATE", false),

		ReadinessRequireDB: envBool("AUTHGATE_READINESS_REQUIRE_DB", false),

		MetricsEnabled: envBool("AUTHGATE_METRICS_ENABLED", true),
	}
}
