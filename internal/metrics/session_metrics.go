package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// SessionMetrics содержит метрики покупательской сессии и обращений к API магазина.
// Nil-указатель допустим: все методы в этом случае ничего не делают.
type SessionMetrics struct {
	// Счётчики жизненного цикла сессии
	sessionsStarted  *prometheus.CounterVec
	sessionsClosed   prometheus.Counter
	sessionsFailed   prometheus.Counter
	operationsTotal  *prometheus.CounterVec
	remoteCallsTotal *prometheus.CounterVec

	// Длительность запросов к удалённому сервису
	remoteDuration *prometheus.HistogramVec

	// Текущее содержимое корзины
	cartItems *prometheus.GaugeVec
}

// NewSessionMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewSessionMetrics() *SessionMetrics {
	return NewSessionMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewSessionMetricsWithRegisterer позволяет изолировать метрики в тестах.
func NewSessionMetricsWithRegisterer(registerer prometheus.Registerer) *SessionMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SessionMetrics{
		sessionsStarted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "tienda_sessions_started_total",
			Help: "Total number of order sessions started, by origin (created or restored)",
		}, []string{"origin"}),
		sessionsClosed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_sessions_closed_total",
			Help: "Total number of orders closed by customers",
		}),
		sessionsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "tienda_sessions_failed_total",
			Help: "Total number of order sessions that failed to initialize",
		}),
		operationsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "tienda_session_operations_total",
			Help: "Total number of session operations by name and outcome",
		}, []string{"operation", "outcome"}),
		remoteCallsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "tienda_remote_calls_total",
			Help: "Total number of calls to the store API by operation and outcome",
		}, []string{"operation", "outcome"}),
		remoteDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "tienda_remote_call_duration_seconds",
			Help:    "Duration of calls to the store API in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
		cartItems: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "tienda_cart_items",
			Help: "Number of items in the active cart by list type",
		}, []string{"list"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeOK
}

// RecordSessionStarted учитывает новую (created) или восстановленную (restored) сессию.
func (m *SessionMetrics) RecordSessionStarted(restored bool) {
	if m == nil {
		return
	}
	origin := "created"
	if restored {
		origin = "restored"
	}
	m.sessionsStarted.WithLabelValues(origin).Inc()
}

// RecordSessionClosed увеличивает счётчик закрытых заказов.
func (m *SessionMetrics) RecordSessionClosed() {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc()
}

// RecordSessionFailed увеличивает счётчик неудачных инициализаций.
func (m *SessionMetrics) RecordSessionFailed() {
	if m == nil {
		return
	}
	m.sessionsFailed.Inc()
}

// RecordOperation учитывает операцию сессии с её результатом.
func (m *SessionMetrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordRemoteCall записывает длительность и результат запроса к API.
func (m *SessionMetrics) RecordRemoteCall(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.remoteCallsTotal.WithLabelValues(operation, outcome(err)).Inc()
	m.remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetCartItems выставляет размеры списков buy и wishlist.
func (m *SessionMetrics) SetCartItems(buy, wishlist int) {
	if m == nil {
		return
	}
	m.cartItems.WithLabelValues("buy").Set(float64(buy))
	m.cartItems.WithLabelValues("wishlist").Set(float64(wishlist))
}
