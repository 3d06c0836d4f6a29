package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/api"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	healthcheck "github.com/alesilvadev/mi-tienda-uy-frontend/internal/health"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/httpapi"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/messaging/kafka"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/metrics"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/session"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/version"
)

// Kiosk собирает все компоненты киоска: клиент API, локальное хранилище,
// контроллер сессии и HTTP-обработчики.
type Kiosk struct {
	Client    *api.Client
	Store     domain.LocalStore
	Session   *session.Controller
	Health    *healthcheck.Handler
	publisher *kafka.SessionPublisher
	logger    *log.Entry
}

// NewKiosk открывает хранилище и собирает зависимости. Start сессии не
// вызывается: этим занимается Run.
func NewKiosk(ctx context.Context, cfg Config, logger *log.Entry) (*Kiosk, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	sessionMetrics := metrics.NewSessionMetrics()

	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger.WithField("component", "store-api")),
		api.WithMetrics(sessionMetrics),
	)

	store, err := OpenLocalStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{session.WithMetrics(sessionMetrics)}
	// ошибка Kafka не мешает работе киоска
	publisher, _ := initSessionPublisher(cfg, logger)
	if publisher != nil {
		opts = append(opts, session.WithEventPublisher(publisher))
	}
	ctrl := session.NewController(client, store, logger.WithField("component", "session"), opts...)

	healthHandler := healthcheck.NewHandler(version.GetVersion(), cfg.DeviceID)
	healthHandler.RegisterChecker("local_store", healthcheck.NewChecker("local_store", storePing(store)))
	healthHandler.RegisterChecker("store_api", healthcheck.NewOptionalChecker("store_api", client.Health))

	return &Kiosk{
		Client:    client,
		Store:     store,
		Session:   ctrl,
		Health:    healthHandler,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Handler возвращает локальный API сессии.
func (k *Kiosk) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.NewHandler(k.Session, k.logger.WithField("component", "kiosk-http")))
}

// Close освобождает хранилище и Kafka producer.
func (k *Kiosk) Close() {
	closeKafka(k.publisher, k.logger)
	if err := k.Store.Close(); err != nil {
		k.logger.WithError(err).Warn("failed to close local store")
	}
}

// Run запускает киоск и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	kiosk, err := NewKiosk(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kiosk.Close()

	// Неудачный старт не останавливает процесс: интерфейс предложит повторить.
	if err := kiosk.Session.Start(ctx); err != nil {
		logger.WithError(err).Warn("order session failed to start, waiting for retry")
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, kiosk.Health)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           kiosk.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("kiosk API слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем kiosk API")
		shutdownHTTP(srv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
