package repository

import (
	"context"
	"errors"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
)

// ErrNotFound is returned when no order exists for the requested id.
var ErrNotFound = errors.New("order not found")

// OrderRepository is the injectable persistence boundary. The domain
// logic is pure functions over order values; implementations only move
// snapshots in and out. Get must return a copy the caller may mutate
// freely before handing it back to Save.
type OrderRepository interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]*models.Order, error)
	ListOpen(ctx context.Context) ([]*models.Order, error)
}
