package app

import (
	"go.uber.org/zap"

	"shuttle/internal/config"
	"shuttle/internal/messaging"
	"shuttle/internal/service"
)

const publishRetries = 5

// NewSender returns the outbound message sender. Without an AMQP URL messages
// are only logged. The returned func closes the underlying connection.
func NewSender(cfg config.MessagingConfig, logger *zap.Logger) (service.Sender, func(), error) {
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, outbound messages will only be logged")
		return service.LogSender{Logger: logger}, func() {}, nil
	}

	publisher, err := messaging.NewPublisher(cfg.AMQPURL, cfg.Queue, publishRetries, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing outbound messages", zap.String("queue", cfg.Queue))
	return publisher, publisher.Close, nil
}
