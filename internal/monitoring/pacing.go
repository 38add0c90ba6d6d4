// Package monitoring watches course pacing across open orders. A cron
// schedule drives periodic scans; anything past the pacing threshold is
// flagged for the expediter.
package monitoring

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/metrics"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
)

// OverdueCourse flags one course of one order that exceeded the pacing
// threshold without completing.
type OverdueCourse struct {
	OrderID string            `json:"order_id"`
	TableID string            `json:"table_id"`
	Course  models.CourseType `json:"course"`
	Waiting time.Duration     `json:"waiting_ns"`
}

// PacingMonitor collects pacing observations from periodic scans.
type PacingMonitor struct {
	repo      repository.OrderRepository
	threshold time.Duration

	mu        sync.RWMutex
	snapshot  map[string]interface{}
	overdue   []OverdueCourse
	startTime time.Time
}

// NewPacingMonitor creates a monitor flagging courses that have been
// cooking longer than threshold without every item served.
func NewPacingMonitor(repo repository.OrderRepository, threshold time.Duration) *PacingMonitor {
	return &PacingMonitor{
		repo:      repo,
		threshold: threshold,
		snapshot:  make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// Scan walks open orders and refreshes the pacing snapshot. Completed
// courses record their elapsed time; incomplete courses whose first
// prep started more than threshold ago are flagged overdue.
func (m *PacingMonitor) Scan(ctx context.Context, now time.Time) error {
	orders, err := m.repo.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("pacing scan failed: %w", err)
	}

	snapshot := make(map[string]interface{})
	var overdue []OverdueCourse
	for _, order := range orders {
		for _, timing := range order.CourseTimings() {
			key := order.ID + "_" + string(timing.Course)
			switch {
			case timing.Complete:
				snapshot[key+"_elapsed_seconds"] = timing.Elapsed.Seconds()
			case timing.FirstPrepAt != nil:
				waiting := now.Sub(*timing.FirstPrepAt)
				snapshot[key+"_waiting_seconds"] = waiting.Seconds()
				if waiting > m.threshold {
					overdue = append(overdue, OverdueCourse{
						OrderID: order.ID,
						TableID: order.TableID,
						Course:  timing.Course,
						Waiting: waiting,
					})
					metrics.OverdueCourses.WithLabelValues(string(timing.Course)).Inc()
				}
			}
		}
	}
	snapshot["open_orders"] = len(orders)
	snapshot["last_scan"] = now.Format(time.RFC3339)

	m.mu.Lock()
	m.snapshot = snapshot
	m.overdue = overdue
	m.mu.Unlock()
	return nil
}

// Overdue returns the courses flagged by the last scan.
func (m *PacingMonitor) Overdue() []OverdueCourse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]OverdueCourse, len(m.overdue))
	copy(out, m.overdue)
	return out
}

// Metric returns one value from the last scan's snapshot.
func (m *PacingMonitor) Metric(name string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.snapshot[name]
	return value, exists
}

// Metrics returns the last scan's snapshot plus monitor uptime.
func (m *PacingMonitor) Metrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]interface{}, len(m.snapshot)+1)
	for k, v := range m.snapshot {
		out[k] = v
	}
	out["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return out
}

// Start schedules periodic scans, e.g. "@every 1m". The returned stop
// function halts the schedule.
func (m *PacingMonitor) Start(ctx context.Context, schedule string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := m.Scan(ctx, time.Now()); err != nil {
			log.Printf("monitoring: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid pacing schedule %q: %w", schedule, err)
	}
	c.Start()
	return func() { c.Stop() }, nil
}
