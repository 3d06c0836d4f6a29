// Package cashier — сценарий кассира: вход, поиск заказа по коду выдачи и
// смена статуса. Токен хранится в отдельном слоте локального хранилища.
package cashier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// Service выполняет операции кассира от имени сохранённого токена.
type Service struct {
	remote      domain.CashierAPI
	credentials domain.CredentialStore
	logger      *log.Entry
	now         func() time.Time
}

// NewService создаёт сервис кассира.
func NewService(remote domain.CashierAPI, credentials domain.CredentialStore, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cashier")
	}
	return &Service{
		remote:      remote,
		credentials: credentials,
		logger:      logger,
		now:         time.Now,
	}
}

// Login получает токен и сохраняет его локально.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrCredentialsRequired
	}

	token, err := s.remote.Login(ctx, email, password)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Warn("cashier login failed")
		return err
	}
	if err := s.credentials.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("%w: save token: %w", domain.ErrPersistence, err)
	}

	s.logger.WithField("email", email).Info("cashier logged in")
	return nil
}

// Logout удаляет сохранённый токен.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.credentials.ClearToken(ctx); err != nil {
		return fmt.Errorf("%w: clear token: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Token возвращает сохранённый токен. Истёкший JWT удаляется, и вызывающий
// получает ErrUnauthenticated. Непрозрачные токены не проверяются: их
// срок знает только сервер.
func (s *Service) Token(ctx context.Context) (string, error) {
	token, ok, err := s.credentials.LoadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: load token: %w", domain.ErrPersistence, err)
	}
	if !ok || token == "" {
		return "", domain.ErrUnauthenticated
	}

	if tokenExpired(token, s.now()) {
		s.logger.Info("stored cashier token expired")
		if err := s.credentials.ClearToken(ctx); err != nil {
			s.logger.WithError(err).Warn("failed to clear expired token")
		}
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

// Authenticated сообщает, есть ли пригодный токен.
func (s *Service) Authenticated(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// LookupOrder ищет заказ по коду выдачи. Результат не кэшируется.
func (s *Service) LookupOrder(ctx context.Context, code string) (domain.Order, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return domain.Order{}, domain.ErrOrderCodeRequired
	}
	token, err := s.Token(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.remote.GetOrderByCode(ctx, code, token)
	if err != nil {
		s.forgetRejectedToken(ctx, err)
		return domain.Order{}, err
	}
	return order, nil
}

// UpdateOrderStatus меняет статус заказа и возвращает его с подтверждённым
// сервером статусом.
func (s *Service) UpdateOrderStatus(ctx context.Context, order domain.Order, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrStatusInvalid
	}
	if order.ID == "" {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	token, err := s.Token(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	acked, err := s.remote.UpdateOrderStatus(ctx, order.ID, status, token)
	if err != nil {
		s.forgetRejectedToken(ctx, err)
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"status":   status,
		}).Warn("failed to update order status")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"order_code": order.Code,
		"from":       order.Status,
		"to":         acked,
	}).Info("order status updated")

	order.Status = acked
	order.Items = domain.CloneItems(order.Items)
	return order, nil
}

// forgetRejectedToken удаляет токен, который сервер отверг с 401.
func (s *Service) forgetRejectedToken(ctx context.Context, err error) {
	if !errors.Is(err, domain.ErrUnauthenticated) {
		return
	}
	if clearErr := s.credentials.ClearToken(ctx); clearErr != nil {
		s.logger.WithError(clearErr).Warn("failed to clear rejected token")
	}
}

func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
