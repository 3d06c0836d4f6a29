package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/app"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/version"
)

// setupLogger настраивает формат и уровень логирования для киоска.
func setupLogger(level log.Level) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
}

// startupFields — поля стартового лога; DSN не логируется.
func startupFields(cfg app.Config) log.Fields {
	fields := log.Fields{
		"build":          version.String(),
		"api_url":        cfg.APIURL,
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"device_id":      cfg.DeviceID,
	}
	if cfg.StorageDriver == app.StorageDriverSQLite {
		fields["sqlite_path"] = cfg.SQLitePath
	}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		fields["kafka_brokers"] = brokers
	}
	return fields
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		setupLogger(log.InfoLevel)
		log.WithError(err).Fatal("некорректная конфигурация")
	}
	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(startupFields(cfg)).Info("запускаем киоск Mi Tienda")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("киоск остановлен")
}
