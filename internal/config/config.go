// Package config loads server settings from defaults, an optional YAML file and
// the environment, in that order.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes structured environment overrides, e.g. RESERVATIONS_SERVER_ADDR.
const EnvPrefix = "RESERVATIONS_"

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendMySQL  = "mysql"

	TokenOpaque = "opaque"
	TokenJWT    = "jwt"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend     string `koanf:"backend"`
	DataDir     string `koanf:"data_dir"`
	DatabaseURL string `koanf:"database_url"`
	DBHost      string `koanf:"db_host"`
	DBPort      int    `koanf:"db_port"`
	DBName      string `koanf:"db_name"`
	DBUser      string `koanf:"db_user"`
	DBPassword  string `koanf:"db_password"`
}

type AuthConfig struct {
	TokenFormat           string        `koanf:"token_format"`
	JWTSecret             string        `koanf:"jwt_secret"`
	SessionTTL            time.Duration `koanf:"session_ttl"`
	SweepInterval         time.Duration `koanf:"sweep_interval"`
	BcryptCost            int           `koanf:"bcrypt_cost"`
	EnforcePasswordPolicy bool          `koanf:"enforce_password_policy"`
	AdminDefaultUser      string        `koanf:"admin_default_username"`
	AdminDefaultPass      string        `koanf:"admin_default_password"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			DataDir: "data",
			DBHost:  "db",
			DBPort:  3306,
			DBName:  "reservations",
			DBUser:  "appuser",
		},
		Auth: AuthConfig{
			TokenFormat:   TokenOpaque,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (skipped when empty), then RESERVATIONS_* variables, then the
// bare variables ADDR, DATABASE_URL, JWT_SECRET, ADMIN_DEFAULT_USERNAME,
// ADMIN_DEFAULT_PASSWORD and LOG_LEVEL.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// envKey maps RESERVATIONS_STORAGE_DATA_DIR to storage.data_dir. Only the first
// underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getenv("ADDR", cfg.Server.Addr)
	cfg.Storage.DatabaseURL = getenv("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Auth.JWTSecret = getenv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminDefaultUser = getenv("ADMIN_DEFAULT_USERNAME", cfg.Auth.AdminDefaultUser)
	cfg.Auth.AdminDefaultPass = getenv("ADMIN_DEFAULT_PASSWORD", cfg.Auth.AdminDefaultPass)
	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendMySQL:
	case BackendBadger:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Auth.TokenFormat {
	case TokenOpaque:
	case TokenJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for jwt tokens")
		}
	default:
		return fmt.Errorf("unknown auth.token_format %q", c.Auth.TokenFormat)
	}
	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("auth.session_ttl must not be negative")
	}
	if c.Auth.SessionTTL > 0 && c.Auth.SweepInterval <= 0 {
		return fmt.Errorf("auth.sweep_interval must be positive when sessions expire")
	}
	return nil
}

// DSN returns storage.database_url when set, otherwise a DSN assembled from
// the db_* fields.
func (c Config) DSN() string {
	if c.Storage.DatabaseURL != "" {
		return c.Storage.DatabaseURL
	}
	mc := mysql.NewConfig()
	mc.User = c.Storage.DBUser
	mc.Passwd = c.Storage.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Storage.DBHost, strconv.Itoa(c.Storage.DBPort))
	mc.DBName = c.Storage.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// String renders the effective configuration with secrets masked.
func (c Config) String() string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	return fmt.Sprintf(
		"server.addr=%s storage.backend=%s storage.data_dir=%s storage.db=%s@%s:%d/%s storage.db_password=%s storage.database_url=%s "+
			"auth.token_format=%s auth.jwt_secret=%s auth.session_ttl=%s auth.enforce_password_policy=%t log.level=%s log.format=%s",
		c.Server.Addr, c.Storage.Backend, c.Storage.DataDir,
		c.Storage.DBUser, c.Storage.DBHost, c.Storage.DBPort, c.Storage.DBName, mask(c.Storage.DBPassword), mask(c.Storage.DatabaseURL),
		c.Auth.TokenFormat, mask(c.Auth.JWTSecret), c.Auth.SessionTTL, c.Auth.EnforcePasswordPolicy, c.Log.Level, c.Log.Format,
	)
}
