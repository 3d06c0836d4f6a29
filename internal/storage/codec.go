// Package storage содержит общий формат снимка для всех реализаций
// локального хранилища (memory, sqlite, postgres, redis).
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// EncodeSnapshot сериализует снимок заказа в JSON.
func EncodeSnapshot(snapshot domain.Snapshot) ([]byte, error) {
	if snapshot.Items == nil {
		snapshot.Items = []domain.OrderItem{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode order snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot восстанавливает снимок из JSON.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode order snapshot: %w", err)
	}
	if snapshot.Items == nil {
		snapshot.Items = []domain.OrderItem{}
	}
	return snapshot, nil
}
