package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation — входные данные отклонены локально, запрос не отправлялся.
	ErrValidation = errors.New("validation error")
	// ErrNotFound — поиск товара, заказа или позиции не дал результата.
	ErrNotFound = errors.New("not found")
	// ErrRemote — удалённый сервис отклонил запрос.
	ErrRemote = errors.New("remote error")
	// ErrUnauthenticated — нет сохранённого токена кассира или он истёк.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrPersistence — не удалось записать состояние в локальное хранилище.
	ErrPersistence = errors.New("local persistence failed")

	// Ошибки состояния сессии.
	ErrSessionNotReady = errors.New("order session is not ready")
	ErrSessionClosed   = errors.New("order session is closed")
	ErrNothingSelected = errors.New("no product selected")
	ErrAlreadyStarted  = errors.New("order session already started")

	ErrQuantityInvalid     = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrColorInvalid        = fmt.Errorf("%w: color is not available for this product", ErrValidation)
	ErrListTypeInvalid     = fmt.Errorf("%w: list type must be buy or wishlist", ErrValidation)
	ErrEmptyPatch          = fmt.Errorf("%w: quantity or list type is required", ErrValidation)
	ErrSKURequired         = fmt.Errorf("%w: sku is required", ErrValidation)
	ErrOrderCodeRequired   = fmt.Errorf("%w: order code is required", ErrValidation)
	ErrCredentialsRequired = fmt.Errorf("%w: email and password are required", ErrValidation)
	ErrStatusInvalid       = fmt.Errorf("%w: unknown order status", ErrValidation)
	ErrProductNameRequired = fmt.Errorf("%w: product name is required", ErrValidation)
	ErrProductPriceInvalid = fmt.Errorf("%w: product price must be positive", ErrValidation)
	ErrProductIDRequired   = fmt.Errorf("%w: product id is required", ErrValidation)
	ErrNoBuyItems          = fmt.Errorf("%w: order has no items to buy", ErrValidation)
	ErrItemNotFound        = fmt.Errorf("%w: order item", ErrNotFound)
	ErrOrderNotFound       = fmt.Errorf("%w: order", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("%w: product", ErrNotFound)
	ErrOrderIDMissing      = fmt.Errorf("%w: order id missing in response", ErrRemote)
)

// RemoteError описывает отказ удалённого сервиса. Message показывается
// пользователю без изменений.
type RemoteError struct {
	StatusCode int
	Message    string
}

// NewRemoteError собирает ошибку по коду ответа; пустое сообщение заменяется
// на "API error: <status>".
func NewRemoteError(status int, message string) *RemoteError {
	if message == "" {
		message = fmt.Sprintf("API error: %d", status)
	}
	return &RemoteError{StatusCode: status, Message: message}
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is связывает RemoteError с ErrRemote, а ответ 404 ещё и с ErrNotFound.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsValidation проверяет, отклонён ли ввод локально.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound проверяет, что искомая сущность отсутствует.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRemote проверяет, что ошибка пришла от удалённого сервиса.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote)
}

// UserMessage возвращает текст ошибки для показа пользователю: сообщение
// удалённого сервиса дословно, иначе текст ошибки.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}
