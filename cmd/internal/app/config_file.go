package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps CLI flag names to config keys (and YAML paths).
var flagKeys = map[string]string{
	"http-addr":            "http.addr",
	"log-level":            "log.level",
	"log-format":           "log.format",
	"read-header-timeout":  "http.read_header_timeout",
	"read-timeout":         "http.read_timeout",
	"write-timeout":        "http.write_timeout",
	"idle-timeout":         "http.idle_timeout",
	"shutdown-timeout":     "http.shutdown_timeout",
	"database-url":         "database.url",
	"db-max-conns":         "database.max_conns",
	"db-min-conns":         "database.min_conns",
	"db-connect-attempts":  "database.connect_attempts",
	"auto-migrate":         "database.auto_migrate",
	"readiness-require-db": "readiness.require_db",
	"metrics":              "metrics.enabled",
}

// RegisterFlags adds the server flags to fs. Defaults shown in help come
// from the environment so that --help reflects the effective values.
func RegisterFlags(fs *pflag.FlagSet) {
	def := LoadConfig()

	fs.String("http-addr", def.HTTPAddr, "listen address")
	fs.String("log-level", def.LogLevel, "log level (debug|info|warn|error)")
	fs.String("log-format", def.LogFormat, "log format (json|pretty)")
	fs.Duration("read-header-timeout", def.ReadHeaderTimeout, "HTTP read header timeout")
	fs.Duration("read-timeout", def.ReadTimeout, "HTTP read timeout")
	fs.Duration("write-timeout", def.WriteTimeout, "HTTP write timeout")
	fs.Duration("idle-timeout", def.IdleTimeout, "HTTP idle timeout")
	fs.Duration("shutdown-timeout", def.ShutdownTimeout, "graceful shutdown timeout")
	fs.String("database-url", def.DatabaseURL, "credential store URL (postgres://, sqlite://, empty for memory)")
	fs.Int32("db-max-conns", def.DBMaxConns, "Postgres pool max connections")
	fs.Int32("db-min-conns", def.DBMinConns, "Postgres pool min connections")
	fs.Int("db-connect-attempts", def.DBConnectAttempts, "Postgres connection attempts at startup")
	fs.Bool("auto-migrate", def.AutoMigrate, "apply Postgres migrations at startup")
	fs.Bool("readiness-require-db", def.ReadinessRequireDB, "fail /readyz without a persistent store")
	fs.Bool("metrics", def.MetricsEnabled, "expose /metrics")
}

// ResolveConfig layers configuration: environment defaults, then the YAML
// file at path (if any), then flags explicitly set on fs.
func ResolveConfig(fs *pflag.FlagSet, path string) (Config, error) {
	cfg := LoadConfig()
	k := koanf.New(".")

	if p := strings.TrimSpace(path); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", p, err)
		}
	}

	if fs != nil {
		changedOnly := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(changedOnly, nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	applyKoanf(k, &cfg)
	return cfg, nil
}

func applyKoanf(k *koanf.Koanf, cfg *Config) {
	str := func(key string, dst *string) {
		if k.Exists(key) {
			*dst = strings.TrimSpace(k.String(key))
		}
	}
	str("http.addr", &cfg.HTTPAddr)
	str("log.level", &cfg.LogLevel)
	str("log.format", &cfg.LogFormat)
	str("database.url", &cfg.DatabaseURL)

	for key, dst := range map[string]*time.Duration{
		"http.read_header_timeout": &cfg.ReadHeaderTimeout,
		"http.read_timeout":        &cfg.ReadTimeout,
		"http.write_timeout":       &cfg.WriteTimeout,
		"http.idle_timeout":        &cfg.IdleTimeout,
		"http.shutdown_timeout":    &cfg.ShutdownTimeout,
	} {
		if k.Exists(key) {
			if d := k.Duration(key); d > 0 {
				*dst = d
			}
		}
	}

	if k.Exists("http.max_header_bytes") {
		if n := k.Int("http.max_header_bytes"); n > 0 {
			cfg.MaxHeaderBytes = n
		}
	}
	if k.Exists("database.connect_attempts") {
		if n := k.Int("database.connect_attempts"); n > 0 {
			cfg.DBConnectAttempts = n
		}
	}
	if k.Exists("database.max_conns") {
		cfg.DBMaxConns = int32(k.Int("database.max_conns")) // #nosec G115 -- pool sizes are small
	}
	if k.Exists("database.min_conns") {
		cfg.DBMinConns = int32(k.Int("database.min_conns")) // #nosec G115 -- pool sizes are small
	}

	for key, dst := range map[string]*bool{
		"database.auto_migrate": &cfg.AutoMigrate,
		"readiness.require_db":  &cfg.ReadinessRequireDB,
		"metrics.enabled":       &cfg.MetricsEnabled,
	} {
		if k.Exists(key) {
			*dst = k.Bool(key)
		}
	}
}
