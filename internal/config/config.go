package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"inventra/backend/internal/logging"
)

const (
	AmountPolicyEnforce = "enforce"
	AmountPolicyTrust   = "trust"

	RoleAdmin = "admin"
	RoleClerk = "clerk"
)

type Config struct {
	HTTP      HTTP           `koanf:"http"`
	Store     Store          `koanf:"store"`
	Redis     Redis          `koanf:"redis"`
	Auth      Auth           `koanf:"auth"`
	Log       logging.Config `koanf:"log"`
	Ledger    Ledger         `koanf:"ledger"`
	Dashboard Dashboard      `koanf:"dashboard"`
	Rollup    Rollup         `koanf:"rollup"`
}

type HTTP struct {
	Port              string        `koanf:"port"`
	AllowedOrigin     string        `koanf:"allowedOrigin"`
	ReadHeaderTimeout time.Duration `koanf:"readHeaderTimeout"`
	ReadTimeout       time.Duration `koanf:"readTimeout"`
	WriteTimeout      time.Duration `koanf:"writeTimeout"`
	IdleTimeout       time.Duration `koanf:"idleTimeout"`
}

type Store struct {
	DatabaseURL string `koanf:"databaseURL"`
	SQLitePath  string `koanf:"sqlitePath"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type Auth struct {
	Enabled               bool   `koanf:"enabled"`
	Secret                string `koanf:"secret"`
	AccessTokenTTLMinutes int    `koanf:"accessTokenTTLMinutes"`
	Users                 []User `koanf:"users"`
}

// User is a login declared in configuration. PasswordHash is a bcrypt hash.
type User struct {
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"passwordHash"`
	Role         string `koanf:"role"`
}

type Ledger struct {
	AmountPolicy string `koanf:"amountPolicy"`
}

type Dashboard struct {
	CacheTTLSeconds int `koanf:"cacheTTLSeconds"`
}

type Rollup struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
}

// envKeys maps the supported environment variables onto config paths.
var envKeys = map[string]string{
	"PORT":                        "http.port",
	"ALLOWED_ORIGIN":              "http.allowedOrigin",
	"DATABASE_URL":                "store.databaseURL",
	"SQLITE_PATH":                 "store.sqlitePath",
	"REDIS_ADDR":                  "redis.addr",
	"REDIS_PASSWORD":              "redis.password",
	"REDIS_DB":                    "redis.db",
	"AUTH_ENABLED":                "auth.enabled",
	"AUTH_SECRET":                 "auth.secret",
	"ACCESS_TOKEN_TTL_MINUTES":    "auth.accessTokenTTLMinutes",
	"LOG_LEVEL":                   "log.level",
	"LOG_PRETTY":                  "log.pretty",
	"LOG_FILE":                    "log.file",
	"LEDGER_AMOUNT_POLICY":        "ledger.amountPolicy",
	"DASHBOARD_CACHE_TTL_SECONDS": "dashboard.cacheTTLSeconds",
	"ROLLUP_ENABLED":              "rollup.enabled",
	"ROLLUP_SCHEDULE":             "rollup.schedule",
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			Port:              "8080",
			AllowedOrigin:     "http://127.0.0.1:3000",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Auth: Auth{
			AccessTokenTTLMinutes: 480,
		},
		Log: logging.Config{
			Level: "info",
		},
		Ledger: Ledger{
			AmountPolicy: AmountPolicyEnforce,
		},
		Dashboard: Dashboard{
			CacheTTLSeconds: 30,
		},
		Rollup: Rollup{
			Enabled:  true,
			Schedule: "5 0 * * *",
		},
	}
}

// Load layers defaults, the optional YAML file at path and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path = strings.TrimSpace(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok || strings.TrimSpace(value) == "" {
				return "", nil
			}
			return path, strings.TrimSpace(value)
		},
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load env variables")
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	cfg.Ledger.AmountPolicy = strings.ToLower(strings.TrimSpace(cfg.Ledger.AmountPolicy))
	return cfg, nil
}

// PathFromEnv returns the config file named by INVENTRA_CONFIG, if any.
func PathFromEnv() string {
	return os.Getenv("INVENTRA_CONFIG")
}

func (c Config) Validate() error {
	switch c.Ledger.AmountPolicy {
	case AmountPolicyEnforce, AmountPolicyTrust:
	default:
		return errors.Errorf("ledger.amountPolicy must be %q or %q, got %q", AmountPolicyEnforce, AmountPolicyTrust, c.Ledger.AmountPolicy)
	}
	if c.Dashboard.CacheTTLSeconds < 0 {
		return errors.New("dashboard.cacheTTLSeconds cannot be negative")
	}
	if c.Rollup.Enabled {
		if _, err := cron.ParseStandard(c.Rollup.Schedule); err != nil {
			return errors.Wrapf(err, "rollup.schedule %q", c.Rollup.Schedule)
		}
	}
	if c.Auth.Enabled {
		if len(c.Auth.Secret) < 32 {
			return errors.New("AUTH_SECRET must be set and at least 32 characters when auth is enabled")
		}
		if c.Auth.AccessTokenTTLMinutes < 1 {
			return errors.New("auth.accessTokenTTLMinutes must be positive")
		}
		if len(c.Auth.Users) == 0 {
			return errors.New("auth.users must declare at least one user when auth is enabled")
		}
		for _, u := range c.Auth.Users {
			if strings.TrimSpace(u.Username) == "" || u.PasswordHash == "" {
				return errors.New("auth.users entries need a username and passwordHash")
			}
			if u.Role != RoleAdmin && u.Role != RoleClerk {
				return errors.Errorf("auth user %s has unknown role %q", u.Username, u.Role)
			}
		}
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.HTTP.Port)
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.Dashboard.CacheTTLSeconds) * time.Second
}
