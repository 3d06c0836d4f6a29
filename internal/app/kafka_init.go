package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/messaging/kafka"
)

// initSessionPublisher создаёт publisher событий сессии, если брокеры заданы.
// Возвращает nil, nil если брокеры не настроены.
func initSessionPublisher(cfg Config, logger *log.Entry) (*kafka.SessionPublisher, error) {
	brokers := cfg.KafkaBrokerList()
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return kafka.NewSessionPublisher(producer, cfg.KafkaTopic, cfg.DeviceID), nil
}

// closeKafka закрывает publisher если он не nil.
func closeKafka(publisher *kafka.SessionPublisher, logger *log.Entry) {
	if publisher == nil {
		return
	}

	if err := publisher.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
