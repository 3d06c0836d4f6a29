// Package httpapi — локальный JSON API киоска, через который браузерный
// интерфейс на устройстве управляет покупательской сессией.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает маршруты сессии.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(handler.logger))
	r.Use(middleware.Recoverer)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", handler.GetSession)
		r.Post("/start", handler.Start)
		r.Post("/new", handler.StartNewOrder)
		r.Post("/search", handler.SearchProduct)
		r.Post("/selection/cancel", handler.CancelSelection)
		r.Post("/items", handler.AddItem)
		r.Patch("/items/{position}", handler.UpdateItem)
		r.Delete("/items/{position}", handler.RemoveItem)
		r.Post("/close", handler.CloseOrder)
	})
	return r
}

// requestLogger пишет одну строку logrus на запрос.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			entry := logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(started).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("kiosk request failed")
				return
			}
			entry.Debug("kiosk request served")
		})
	}
}
