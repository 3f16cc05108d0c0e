package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"restaurant-crm-api/src/infrastructure/utils"

	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Duration lets YAML files use "90s" / "5m" style values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

type ServerConfig struct {
	Port           string `yaml:"port"`
	Env            string `yaml:"env"`
	JWTSecret      string `yaml:"jwt_secret"`
	SchedulerToken string `yaml:"scheduler_token"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string   `yaml:"driver"`
	Host            string   `yaml:"host"`
	Port            string   `yaml:"port"`
	User            string   `yaml:"user"`
	Password        string   `yaml:"password"`
	Name            string   `yaml:"name"`
	SSLMode         string   `yaml:"sslmode"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

type GatewayConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Token    string   `yaml:"token"`
	Instance string   `yaml:"instance"`
	Timeout  Duration `yaml:"timeout"`
}

type ProcessorConfig struct {
	Interval    Duration `yaml:"interval"`
	Budget      Duration `yaml:"budget"`
	StaleAfter  Duration `yaml:"stale_after"`
	Concurrency int      `yaml:"concurrency"`
	BatchSize   int      `yaml:"batch_size"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	QueueKey string `yaml:"queue_key"`
}

type AIConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	Model   string   `yaml:"model"`
	Timeout Duration `yaml:"timeout"`
}

type MediaConfig struct {
	Root          string `yaml:"root"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxBytes      int64  `yaml:"max_bytes"`
}

type AlertingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	MinFailed  int    `yaml:"min_failed"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Processor ProcessorConfig `yaml:"processor"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Media     MediaConfig     `yaml:"media"`
	Alerting  AlertingConfig  `yaml:"alerting"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development", AllowedOrigins: "*"},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration{5 * time.Minute},
		},
		Gateway: GatewayConfig{Timeout: Duration{15 * time.Second}},
		Processor: ProcessorConfig{
			Interval:    Duration{time.Minute},
			Budget:      Duration{50 * time.Second},
			StaleAfter:  Duration{10 * time.Minute},
			Concurrency: 4,
			BatchSize:   100,
		},
		Redis: RedisConfig{QueueKey: "campaigns:due"},
		AI: AIConfig{
			BaseURL: "https://ai.gateway.lovable.dev/v1",
			Model:   "google/gemini-2.5-flash",
			Timeout: Duration{30 * time.Second},
		},
		Media: MediaConfig{
			Root:          "./media",
			PublicBaseURL: "http://localhost:8080",
			MaxBytes:      16 << 20,
		},
		Alerting: AlertingConfig{MinFailed: 1},
	}
}

// Load applies defaults, then the optional YAML file at path, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = utils.GetEnv("SERVER_PORT", c.Server.Port)
	c.Server.Env = utils.GetEnv("GO_ENV", c.Server.Env)
	c.Server.JWTSecret = utils.GetEnv("JWT_ACCESS_SECRET_KEY", c.Server.JWTSecret)
	c.Server.SchedulerToken = utils.GetEnv("SCHEDULER_TOKEN", c.Server.SchedulerToken)
	c.Server.AllowedOrigins = utils.GetEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Database.Driver = utils.GetEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = utils.GetEnv("DB_HOST", c.Database.Host)
	c.Database.Port = utils.GetEnv("DB_PORT", c.Database.Port)
	c.Database.User = utils.GetEnv("DB_USER", c.Database.User)
	c.Database.Password = utils.GetEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = utils.GetEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = utils.GetEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = utils.GetEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = utils.GetEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime.Duration = utils.GetEnvDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime.Duration)

	c.Gateway.BaseURL = strings.TrimRight(utils.GetEnv("EVOLUTION_API_URL", c.Gateway.BaseURL), "/")
	c.Gateway.Token = utils.GetEnv("EVOLUTION_API_TOKEN", c.Gateway.Token)
	c.Gateway.Instance = utils.GetEnv("EVOLUTION_INSTANCE_NAME", c.Gateway.Instance)
	c.Gateway.Timeout.Duration = utils.GetEnvDuration("EVOLUTION_TIMEOUT", c.Gateway.Timeout.Duration)

	c.Processor.Interval.Duration = utils.GetEnvDuration("PROCESSOR_INTERVAL", c.Processor.Interval.Duration)
	c.Processor.Budget.Duration = utils.GetEnvDuration("PROCESSOR_BUDGET", c.Processor.Budget.Duration)
	c.Processor.StaleAfter.Duration = utils.GetEnvDuration("PROCESSOR_STALE_AFTER", c.Processor.StaleAfter.Duration)
	c.Processor.Concurrency = utils.GetEnvInt("PROCESSOR_CONCURRENCY", c.Processor.Concurrency)
	c.Processor.BatchSize = utils.GetEnvInt("PROCESSOR_BATCH_SIZE", c.Processor.BatchSize)

	c.Redis.URL = utils.GetEnv("REDIS_URL", c.Redis.URL)
	c.Redis.QueueKey = utils.GetEnv("REDIS_QUEUE_KEY", c.Redis.QueueKey)

	c.AI.BaseURL = strings.TrimRight(utils.GetEnv("AI_API_URL", c.AI.BaseURL), "/")
	c.AI.APIKey = utils.GetEnv("AI_API_KEY", c.AI.APIKey)
	c.AI.Model = utils.GetEnv("AI_MODEL", c.AI.Model)
	c.AI.Timeout.Duration = utils.GetEnvDuration("AI_TIMEOUT", c.AI.Timeout.Duration)

	c.Media.Root = utils.GetEnv("MEDIA_ROOT", c.Media.Root)
	c.Media.PublicBaseURL = strings.TrimRight(utils.GetEnv("MEDIA_PUBLIC_BASE_URL", c.Media.PublicBaseURL), "/")
	c.Media.MaxBytes = int64(utils.GetEnvInt("MEDIA_MAX_BYTES", int(c.Media.MaxBytes)))

	c.Alerting.Enabled = utils.GetEnvBool("ALERTING_ENABLED", c.Alerting.Enabled)
	c.Alerting.WebhookURL = utils.GetEnv("ALERTING_WEBHOOK_URL", c.Alerting.WebhookURL)
	c.Alerting.MinFailed = utils.GetEnvInt("ALERTING_MIN_FAILED", c.Alerting.MinFailed)
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
		if missing := c.Database.missing(); len(missing) > 0 {
			problems = append(problems, "missing required database environment variables: "+strings.Join(missing, ", "))
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown database driver %q", c.Database.Driver))
	}

	if c.Processor.Concurrency < 1 {
		problems = append(problems, "processor concurrency must be at least 1")
	}
	if c.Processor.Budget.Duration < 0 || c.Processor.StaleAfter.Duration < 0 || c.Processor.Interval.Duration <= 0 {
		problems = append(problems, "processor interval must be positive and budget/stale_after non-negative")
	}
	if c.Processor.BatchSize < 1 {
		problems = append(problems, "processor batch size must be at least 1")
	}
	if c.Alerting.Enabled && c.Alerting.WebhookURL == "" {
		problems = append(problems, "alerting enabled without a webhook url")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (d DatabaseConfig) missing() []string {
	var missing []string
	required := []struct{ key, value string }{
		{"DB_HOST", d.Host},
		{"DB_PORT", d.Port},
		{"DB_USER", d.User},
		{"DB_PASSWORD", d.Password},
		{"DB_NAME", d.Name},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if d.Driver == DriverPostgres && d.SSLMode == "" {
		missing = append(missing, "DB_SSLMODE")
	}
	return missing
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
