package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediguard/internal/domain"
)

// InventoryAlert flags one inventory item the policy considers worth the
// user's attention.
type InventoryAlert struct {
	Item            domain.InventoryItem `json:"item"`
	DaysUntilExpiry int                  `json:"daysUntilExpiry"`
}

// AddInventoryItem records a medication in the user's stock. Status is taken
// as declared and never recomputed from stock or expiry.
func (s *Service) AddInventoryItem(ctx context.Context, item domain.InventoryItem, userID string) (*domain.InventoryItem, error) {
	if item.Name == "" {
		return nil, &domain.InvalidSubmissionError{Reason: "medication name must not be empty"}
	}
	switch item.Status {
	case domain.InventoryInStock, domain.InventoryLowStock, domain.InventoryExpired:
	default:
		return nil, &domain.InvalidSubmissionError{Reason: "status must be one of: In Stock, Low Stock, Expired"}
	}

	item.ID = "med_" + uuid.New().String()[:8]
	item.UserID = userID
	if err := s.store.CreateInventoryItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListInventory returns the user's inventory, ordered by name.
func (s *Service) ListInventory(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	return s.store.ListInventory(ctx, userID)
}

// InventoryAlerts evaluates the alert policy over the user's inventory and
// returns the items that trip it.
func (s *Service) InventoryAlerts(ctx context.Context, userID string) ([]InventoryAlert, error) {
	items, err := s.store.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	alerts := []InventoryAlert{}
	for _, item := range items {
		days := int(item.ExpiryDate.Sub(now).Hours() / 24)
		worthy, err := s.policy.AlertWorthy(ctx, string(item.Status), days)
		if err != nil {
			s.logger.Warn("alert policy evaluation failed",
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		if worthy {
			alerts = append(alerts, InventoryAlert{Item: item, DaysUntilExpiry: days})
		}
	}
	return alerts, nil
}
