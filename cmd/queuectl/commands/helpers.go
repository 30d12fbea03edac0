package commands

import (
	"fmt"

	"github.com/defermq/defermq/internal/config"
	"github.com/defermq/defermq/internal/logger"
	"github.com/defermq/defermq/internal/queue"
)

// connect loads configuration and opens a queue adapter for a command.
// The caller owns closing the returned queue.
func connect() (*queue.RabbitMQQueue, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, cfg.QueueOptions(), zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return q, nil
}
