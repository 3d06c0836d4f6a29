package kafka

import (
	"time"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// TopicSessionEvents — топик событий покупательских сессий по умолчанию.
const TopicSessionEvents = "mi-tienda.session.events"

// SessionMessage — событие сессии в том виде, в котором оно уходит в Kafka.
type SessionMessage struct {
	EventType string    `json:"event_type"`
	DeviceID  string    `json:"device_id"`
	OrderID   string    `json:"order_id"`
	OrderCode string    `json:"order_code"`
	Subtotal  string    `json:"subtotal"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSessionMessage создает сообщение из события сессии
func NewSessionMessage(deviceID string, event domain.SessionEvent) *SessionMessage {
	return &SessionMessage{
		EventType: event.Type,
		DeviceID:  deviceID,
		OrderID:   event.OrderID,
		OrderCode: event.OrderCode,
		Subtotal:  event.Subtotal,
		ItemCount: event.ItemCount,
		Timestamp: time.Now().UTC(),
	}
}
