package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/defermq/defermq/internal/queue"
)

// Config holds application configuration
type Config struct {
	RabbitMQURL string `yaml:"rabbitmq_url" validate:"required"`

	DefaultQueue string `yaml:"default_queue" validate:"required"`

	QueuePassive    bool  `yaml:"queue_passive"`
	QueueDurable    bool  `yaml:"queue_durable"`
	QueueExclusive  bool  `yaml:"queue_exclusive"`
	QueueAutoDelete bool  `yaml:"queue_auto_delete"`
	MaxPriority     uint8 `yaml:"max_priority"`

	ExchangeType       string `yaml:"exchange_type" validate:"oneof=direct fanout topic headers"`
	ExchangePassive    bool   `yaml:"exchange_passive"`
	ExchangeDurable    bool   `yaml:"exchange_durable"`
	ExchangeAutoDelete bool   `yaml:"exchange_auto_delete"`

	DeclareExchange  bool `yaml:"declare_exchange"`
	DeclareBindQueue bool `yaml:"declare_bind_queue"`

	Priority      uint8         `yaml:"priority" validate:"ltefield=MaxPriority"`
	ErrorCooldown time.Duration `yaml:"error_cooldown"`

	WorkerIdleInterval time.Duration `yaml:"worker_idle_interval"`
	WorkerRetryBase    time.Duration `yaml:"worker_retry_base"`
	WorkerDebugMode    bool          `yaml:"worker_debug_mode"`

	HealthAddr string `yaml:"health_addr"`

	RedisURL  string        `yaml:"redis_url"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
}

// Load builds the configuration from defaults, an optional YAML file named
// by DEFERMQ_CONFIG_FILE, and environment variables, in that order of
// precedence. Missing required keys fail here rather than deep inside a
// publish or pop call.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("DEFERMQ_CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	loadEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DefaultQueue:       queue.DefaultQueueName,
		QueueDurable:       true,
		MaxPriority:        queue.DefaultMaxPriority,
		ExchangeType:       queue.DefaultExchangeType,
		ExchangeDurable:    true,
		DeclareExchange:    true,
		DeclareBindQueue:   true,
		ErrorCooldown:      queue.DefaultErrorCooldown,
		WorkerIdleInterval: time.Second,
		WorkerRetryBase:    5 * time.Second,
		HealthAddr:         ":8081",
		DedupeTTL:          24 * time.Hour,
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.DefaultQueue = getEnv("QUEUE_NAME", cfg.DefaultQueue)

	cfg.QueuePassive = getEnvBool("QUEUE_PASSIVE", cfg.QueuePassive)
	cfg.QueueDurable = getEnvBool("QUEUE_DURABLE", cfg.QueueDurable)
	cfg.QueueExclusive = getEnvBool("QUEUE_EXCLUSIVE", cfg.QueueExclusive)
	cfg.QueueAutoDelete = getEnvBool("QUEUE_AUTO_DELETE", cfg.QueueAutoDelete)
	cfg.MaxPriority = getEnvUint8("QUEUE_MAX_PRIORITY", cfg.MaxPriority)

	cfg.ExchangeType = getEnv("EXCHANGE_TYPE", cfg.ExchangeType)
	cfg.ExchangePassive = getEnvBool("EXCHANGE_PASSIVE", cfg.ExchangePassive)
	cfg.ExchangeDurable = getEnvBool("EXCHANGE_DURABLE", cfg.ExchangeDurable)
	cfg.ExchangeAutoDelete = getEnvBool("EXCHANGE_AUTO_DELETE", cfg.ExchangeAutoDelete)

	cfg.DeclareExchange = getEnvBool("DECLARE_EXCHANGE", cfg.DeclareExchange)
	cfg.DeclareBindQueue = getEnvBool("DECLARE_BIND_QUEUE", cfg.DeclareBindQueue)

	cfg.Priority = getEnvUint8("QUEUE_PRIORITY", cfg.Priority)
	cfg.ErrorCooldown = getEnvDuration("ERROR_COOLDOWN", cfg.ErrorCooldown)

	cfg.WorkerIdleInterval = getEnvDuration("WORKER_IDLE_INTERVAL", cfg.WorkerIdleInterval)
	cfg.WorkerRetryBase = getEnvDuration("WORKER_RETRY_BASE", cfg.WorkerRetryBase)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)

	cfg.HealthAddr = getEnv("HEALTH_ADDR", cfg.HealthAddr)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.DedupeTTL = getEnvDuration("DEDUPE_TTL", cfg.DedupeTTL)
}

// QueueOptions translates the configuration into queue adapter options.
func (c *Config) QueueOptions() queue.Options {
	return queue.Options{
		DefaultQueue: c.DefaultQueue,
		Queue: queue.QueueDeclareOptions{
			Passive:     c.QueuePassive,
			Durable:     c.QueueDurable,
			Exclusive:   c.QueueExclusive,
			AutoDelete:  c.QueueAutoDelete,
			MaxPriority: c.MaxPriority,
		},
		Exchange: queue.ExchangeDeclareOptions{
			Type:       c.ExchangeType,
			Passive:    c.ExchangePassive,
			Durable:    c.ExchangeDurable,
			AutoDelete: c.ExchangeAutoDelete,
		},
		DeclareExchange:  c.DeclareExchange,
		DeclareBindQueue: c.DeclareBindQueue,
		Priority:         c.Priority,
		ErrorCooldown:    c.ErrorCooldown,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvUint8(key string, defaultValue uint8) uint8 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 8); err == nil {
			return uint8(intValue)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
