package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
)

func TestPacingMonitor_Scan(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	prep := base.Add(-30 * time.Minute)
	stuck := &models.Order{
		ID: "o-stuck", TableID: "t1", CreatedAt: base.Add(-time.Hour),
		Items: []*models.OrderItem{
			{ID: "a", Name: "Ribeye", Quantity: 1, UnitPrice: 30, Status: models.ItemStatusCooking,
				Course: models.CourseMain, PrepStartAt: &prep},
		},
	}
	if err := repo.Save(ctx, stuck); err != nil {
		t.Fatal(err)
	}

	freshPrep := base.Add(-2 * time.Minute)
	fresh := &models.Order{
		ID: "o-fresh", TableID: "t2", CreatedAt: base,
		Items: []*models.OrderItem{
			{ID: "b", Name: "Tart", Quantity: 1, UnitPrice: 8, Status: models.ItemStatusCooking,
				Course: models.CourseDessert, PrepStartAt: &freshPrep},
		},
	}
	if err := repo.Save(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	m := NewPacingMonitor(repo, 20*time.Minute)
	if err := m.Scan(ctx, base); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	overdue := m.Overdue()
	if len(overdue) != 1 {
		t.Fatalf("overdue = %v, want exactly the stuck order", overdue)
	}
	if overdue[0].OrderID != "o-stuck" || overdue[0].Course != models.CourseMain {
		t.Errorf("overdue entry = %+v", overdue[0])
	}
	if overdue[0].Waiting != 30*time.Minute {
		t.Errorf("waiting = %v, want 30m", overdue[0].Waiting)
	}

	if _, exists := m.Metric("o-fresh_dessert_waiting_seconds"); !exists {
		t.Error("expected waiting metric for the fresh order")
	}
	if open, _ := m.Metric("open_orders"); open != 2 {
		t.Errorf("open_orders = %v, want 2", open)
	}
}

func TestPacingMonitor_CompletedCourse(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	prep := base.Add(-40 * time.Minute)
	served := base.Add(-25 * time.Minute)
	order := &models.Order{
		ID: "o1", TableID: "t1", CreatedAt: base.Add(-time.Hour),
		Items: []*models.OrderItem{
			{ID: "a", Name: "Soup", Quantity: 1, UnitPrice: 9, Status: models.ItemStatusServed,
				Course: models.CourseSoup, PrepStartAt: &prep, ServedAt: &served},
			{ID: "b", Name: "Espresso", Quantity: 1, UnitPrice: 3, Status: models.ItemStatusPending,
				Course: models.CourseDrink},
		},
	}
	if err := repo.Save(ctx, order); err != nil {
		t.Fatal(err)
	}

	m := NewPacingMonitor(repo, 20*time.Minute)
	if err := m.Scan(ctx, base); err != nil {
		t.Fatal(err)
	}

	// A served course is never overdue, however long it took.
	if len(m.Overdue()) != 0 {
		t.Errorf("overdue = %v, want none", m.Overdue())
	}
	elapsed, exists := m.Metric("o1_soup_elapsed_seconds")
	if !exists {
		t.Fatal("expected elapsed metric for the completed soup course")
	}
	if elapsed != (15 * time.Minute).Seconds() {
		t.Errorf("elapsed = %v, want 900s", elapsed)
	}

	metrics := m.Metrics()
	if _, exists := metrics["uptime_seconds"]; !exists {
		t.Error("expected uptime_seconds in metrics snapshot")
	}
}
