package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
)

// MemoryRepository keeps orders in process memory. It backs tests and
// the no-database development mode.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order

	// FailSaves makes every Save return the given error, letting tests
	// exercise the failed-commit path.
	FailSaves error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*models.Order)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return order.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, order *models.Order) error {
	if r.FailSaves != nil {
		return r.FailSaves
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) ListOpen(ctx context.Context) ([]*models.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	open := all[:0]
	for _, order := range all {
		if order.Open() {
			open = append(open, order)
		}
	}
	return open, nil
}
