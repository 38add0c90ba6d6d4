package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
)

func sampleOrder(id string, created time.Time) *models.Order {
	return &models.Order{
		ID:        id,
		TableID:   "table-3",
		CreatedAt: created,
		Items: []*models.OrderItem{
			{ID: id + "-a", Name: "Bisque", Quantity: 1, UnitPrice: 11, Status: models.ItemStatusPending, Course: models.CourseSoup},
			{ID: id + "-b", Name: "Ribeye", Quantity: 2, UnitPrice: 32, Status: models.ItemStatusPending, Course: models.CourseMain},
		},
	}
}

func TestMemoryRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order := sampleOrder("o1", time.Now())
	require.NoError(t, repo.Save(ctx, order))

	got, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	got.Items[0].Status = models.ItemStatusServed

	again, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPending, again.Items[0].Status,
		"mutating a Get result must not touch the stored order")
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ListOpen(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	open := sampleOrder("o1", base)
	done := sampleOrder("o2", base.Add(time.Minute))
	for _, item := range done.Items {
		item.Status = models.ItemStatusServed
	}
	require.NoError(t, repo.Save(ctx, open))
	require.NoError(t, repo.Save(ctx, done))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o1", all[0].ID, "List is ordered by creation time")

	openOrders, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, openOrders, 1)
	assert.Equal(t, "o1", openOrders[0].ID)
}

func TestMemoryRepository_FailSaves(t *testing.T) {
	repo := NewMemoryRepository()
	repo.FailSaves = errors.New("connection reset")
	err := repo.Save(context.Background(), sampleOrder("o1", time.Now()))
	assert.EqualError(t, err, "connection reset")
}

func TestEncodeDecodeOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	order := sampleOrder("o1", now)
	require.NoError(t, order.Items[0].SetComment("shellfish allergy at seat 2",
		[]models.PresetKey{models.PresetShellfishFree}, []models.Role{models.RoleChef}))
	_, err := order.TransitionItem(order.Items[1].ID, models.ItemStatusSent, now)
	require.NoError(t, err)
	_, err = order.UndoItem(order.Items[1].ID, models.UndoReasonWrongItem, "", now)
	require.NoError(t, err)

	rec, items, err := encodeOrder(order)
	require.NoError(t, err)
	require.Len(t, items, 2)

	decoded, err := decodeOrder(rec, items)
	require.NoError(t, err)

	assert.Equal(t, order.ID, decoded.ID)
	assert.Equal(t, order.TableID, decoded.TableID)
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, models.ItemStatusPending, decoded.Items[1].Status)
	require.NotNil(t, decoded.Items[0].Comment)
	assert.True(t, decoded.Items[0].Comment.HasPreset(models.PresetShellfishFree))
	require.Len(t, decoded.UndoHistory, 1)
	assert.Equal(t, models.UndoReasonWrongItem, decoded.UndoHistory[0].Reason)
}
