package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/qubitgyan-student/internal/clients/lms"
	"github.com/yungbote/qubitgyan-student/internal/data/localstate"
	"github.com/yungbote/qubitgyan-student/internal/platform/envutil"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

const defaultConfigPath = "config/config.yaml"

// Duration accepts "15s" style strings or a bare number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type LMSConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
	// SigningKey is the HMAC key the LMS signs access tokens with. When empty
	// the gateway keys per-learner state by token instead of by learner id.
	SigningKey string `yaml:"signing_key"`
}

type RedisConfig struct {
	Addr      string   `yaml:"addr"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	KeyPrefix string   `yaml:"key_prefix"`
	TreeTTL   Duration `yaml:"tree_ttl"`
}

type Config struct {
	ServiceName    string      `yaml:"service_name"`
	HTTPAddr       string      `yaml:"http_addr"`
	LogMode        string      `yaml:"log_mode"`
	LMS            LMSConfig   `yaml:"lms"`
	Redis          RedisConfig `yaml:"redis"`
	LocalStateDSN  string      `yaml:"local_state_dsn"`
	SessionIdle    Duration    `yaml:"session_idle"`
	StreakTimezone string      `yaml:"streak_timezone"`
	CORSOrigins    []string    `yaml:"cors_origins"`
	ShutdownGrace  Duration    `yaml:"shutdown_grace"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "qubitgyan-student",
		HTTPAddr:    ":8080",
		LogMode:     "development",
		LMS: LMSConfig{
			BaseURL:    lms.DefaultBaseURL,
			Timeout:    Duration(15 * time.Second),
			MaxRetries: 2,
		},
		Redis: RedisConfig{
			KeyPrefix: "qg:",
			TreeTTL:   Duration(10 * time.Minute),
		},
		LocalStateDSN:  localstate.DefaultDSN,
		SessionIdle:    Duration(30 * time.Minute),
		StreakTimezone: "Asia/Kolkata",
		ShutdownGrace:  Duration(15 * time.Second),
	}
}

// LoadConfig layers defaults, the optional YAML file (QG_CONFIG_PATH or
// config/config.yaml) and environment overrides, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()

	path := envutil.String("QG_CONFIG_PATH", "")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else if log != nil {
		log.Info("loaded config file", "path", path)
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPAddr = envutil.String("HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.LMS.BaseURL = envutil.String("LMS_API_URL", cfg.LMS.BaseURL)
	cfg.LMS.Timeout = Duration(envutil.Seconds("LMS_TIMEOUT_SECONDS", cfg.LMS.Timeout.Std()))
	cfg.LMS.MaxRetries = envutil.Int("LMS_MAX_RETRIES", cfg.LMS.MaxRetries)
	cfg.LMS.SigningKey = envutil.String("LMS_JWT_SIGNING_KEY", cfg.LMS.SigningKey)
	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TreeTTL = Duration(envutil.Seconds("TREE_CACHE_TTL_SECONDS", cfg.Redis.TreeTTL.Std()))
	cfg.LocalStateDSN = envutil.String("LOCAL_STATE_DSN", cfg.LocalStateDSN)
	cfg.SessionIdle = Duration(envutil.Seconds("SESSION_IDLE_SECONDS", cfg.SessionIdle.Std()))
	cfg.StreakTimezone = envutil.String("STREAK_TIMEZONE", cfg.StreakTimezone)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.ShutdownGrace = Duration(envutil.Seconds("SHUTDOWN_GRACE_SECONDS", cfg.ShutdownGrace.Std()))
}

func (c Config) validate() error {
	if strings.TrimSpace(c.LMS.BaseURL) == "" {
		return errors.New("lms base url required")
	}
	if c.LMS.MaxRetries < 0 {
		return fmt.Errorf("lms max_retries must be >= 0, got %d", c.LMS.MaxRetries)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone used to bucket completions into streak days.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.StreakTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid streak timezone %q: %w", name, err)
	}
	return loc, nil
}
