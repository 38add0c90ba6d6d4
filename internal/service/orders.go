// Package service coordinates the pure order domain with its external
// collaborators. Every mutation is two-phase: a local transform staged
// on a copy of the order, then a commit that mirrors the result to the
// persistence layer and fans events out to subscribers. A failed commit
// leaves the stored order untouched; reconciling any optimistic caller
// state is the caller's responsibility.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/metrics"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/notify"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
)

// CommitResult reports the outcome of mirroring a staged mutation to
// the persistence layer.
type CommitResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func committed() CommitResult { return CommitResult{OK: true} }

func failed(err error) CommitResult { return CommitResult{Reason: err.Error()} }

// ItemSpec describes one line of a new order.
type ItemSpec struct {
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice float64           `json:"unit_price"`
	Course    models.CourseType `json:"course"`
}

// Orders is the application service for the order item lifecycle.
// Mutations are serialized by a single mutex: the domain assumes one
// in-process mutator at a time.
type Orders struct {
	repo     repository.OrderRepository
	notifier notify.Notifier

	mu  sync.Mutex
	now func() time.Time
}

// NewOrders wires the service. A nil notifier disables fan-out.
func NewOrders(repo repository.OrderRepository, notifier notify.Notifier) *Orders {
	if notifier == nil {
		notifier = notify.Fanout{}
	}
	return &Orders{repo: repo, notifier: notifier, now: time.Now}
}

// PlaceOrder validates the lines and creates an order with every item
// pending. Course indexes follow per-course insertion order.
func (s *Orders) PlaceOrder(ctx context.Context, tableID string, lines []ItemSpec) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := &models.Order{
		ID:        uuid.NewString(),
		TableID:   tableID,
		CreatedAt: s.now(),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for %q", models.ErrValidation, line.Name)
		}
		if !line.Course.IsValid() {
			return nil, fmt.Errorf("%w: unknown course type %q", models.ErrValidation, line.Course)
		}
		order.Items = append(order.Items, &models.OrderItem{
			ID:          uuid.NewString(),
			Name:        line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Status:      models.ItemStatusPending,
			Course:      line.Course,
			CourseIndex: order.NextCourseIndex(line.Course, ""),
		})
	}

	if err := s.repo.Save(ctx, order); err != nil {
		metrics.FailedCommits.Inc()
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	return order, nil
}

// Get returns one order.
func (s *Orders) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// List returns every order in creation order.
func (s *Orders) List(ctx context.Context) ([]*models.Order, error) {
	return s.repo.List(ctx)
}

// Staged is a locally applied mutation awaiting commit. The underlying
// stored order is untouched until Commit succeeds.
type Staged struct {
	svc     *Orders
	order   *models.Order
	changes []models.StatusChange
	undone  *models.UndoReason
}

// Order exposes the mutated copy, e.g. for optimistic UI responses.
func (st *Staged) Order() *models.Order {
	return st.order
}

// Commit mirrors the staged order to the persistence layer and, on
// success, publishes the staged status changes and bumps counters.
// Notification failure never fails the commit.
func (st *Staged) Commit(ctx context.Context) CommitResult {
	if err := st.svc.repo.Save(ctx, st.order); err != nil {
		metrics.FailedCommits.Inc()
		return failed(err)
	}

	for _, change := range st.changes {
		item := st.order.Item(change.ItemID)
		event := notify.StatusEvent{
			OrderID:   st.order.ID,
			TableID:   st.order.TableID,
			ItemID:    change.ItemID,
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
			Timestamp: change.Timestamp,
		}
		if item != nil {
			event.Station = models.StationFor(item.Course, item.Status)
		}
		st.svc.notifier.PublishStatusChange(ctx, event)

		if st.undone != nil {
			metrics.Undos.WithLabelValues(string(*st.undone)).Inc()
		} else {
			metrics.Transitions.WithLabelValues(string(change.OldStatus), string(change.NewStatus)).Inc()
		}
	}
	return committed()
}

func (s *Orders) load(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// StageTransition applies one forward transition locally. Domain
// rejections come back as errors and bump the rejection counter;
// nothing is persisted until Commit.
func (s *Orders) StageTransition(ctx context.Context, orderID, itemID string, next models.ItemStatus) (*Staged, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	change, err := order.TransitionItem(itemID, next, s.now())
	if err != nil {
		metrics.RejectedTransitions.Inc()
		return nil, err
	}
	return &Staged{svc: s, order: order, changes: []models.StatusChange{change}}, nil
}

// StageUndo reverses one item's last forward transition locally.
func (s *Orders) StageUndo(ctx context.Context, orderID, itemID string, reason models.UndoReason, customReason string) (*Staged, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	change, err := order.UndoItem(itemID, reason, customReason, s.now())
	if err != nil {
		return nil, err
	}
	r := reason
	return &Staged{svc: s, order: order, changes: []models.StatusChange{change}, undone: &r}, nil
}

// StageComment attaches a validated annotation locally. Comments emit
// no status events.
func (s *Orders) StageComment(ctx context.Context, orderID, itemID, text string, presets []models.PresetKey, visibility []models.Role) (*Staged, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(itemID)
	if item == nil {
		return nil, fmt.Errorf("%w: no item %q in order %s", models.ErrValidation, itemID, orderID)
	}
	if err := item.SetComment(text, presets, visibility); err != nil {
		return nil, err
	}
	return &Staged{svc: s, order: order}, nil
}

// StageCourse reassigns an item's course locally, computing the index
// from the items already in the target course.
func (s *Orders) StageCourse(ctx context.Context, orderID, itemID string, course models.CourseType) (*Staged, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(itemID)
	if item == nil {
		return nil, fmt.Errorf("%w: no item %q in order %s", models.ErrValidation, itemID, orderID)
	}
	if err := item.SetCourse(course, order.NextCourseIndex(course, itemID)); err != nil {
		return nil, err
	}
	return &Staged{svc: s, order: order}, nil
}

// StageCancel cancels every item still in a cancellable state. Items
// past cooking finish their run; already-terminal items are skipped.
func (s *Orders) StageCancel(ctx context.Context, orderID string) (*Staged, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	st := &Staged{svc: s, order: order}
	now := s.now()
	for _, item := range order.Items {
		if !item.Status.CanTransitionTo(models.ItemStatusCancelled) {
			continue
		}
		change, err := item.Transition(models.ItemStatusCancelled, now)
		if err != nil {
			return nil, err
		}
		st.changes = append(st.changes, change)
	}
	if len(st.changes) == 0 {
		return nil, fmt.Errorf("%w: no cancellable items in order %s", models.ErrInvalidTransition, orderID)
	}
	return st, nil
}

// ApplyTransition stages and commits in one call.
func (s *Orders) ApplyTransition(ctx context.Context, orderID, itemID string, next models.ItemStatus) (*models.Order, CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.StageTransition(ctx, orderID, itemID, next)
	if err != nil {
		return nil, CommitResult{}, err
	}
	return st.Order(), st.Commit(ctx), nil
}

// ApplyUndo stages and commits in one call.
func (s *Orders) ApplyUndo(ctx context.Context, orderID, itemID string, reason models.UndoReason, customReason string) (*models.Order, CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.StageUndo(ctx, orderID, itemID, reason, customReason)
	if err != nil {
		return nil, CommitResult{}, err
	}
	return st.Order(), st.Commit(ctx), nil
}

// ApplyComment stages and commits in one call.
func (s *Orders) ApplyComment(ctx context.Context, orderID, itemID, text string, presets []models.PresetKey, visibility []models.Role) (*models.Order, CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.StageComment(ctx, orderID, itemID, text, presets, visibility)
	if err != nil {
		return nil, CommitResult{}, err
	}
	return st.Order(), st.Commit(ctx), nil
}

// ApplyCourse stages and commits in one call.
func (s *Orders) ApplyCourse(ctx context.Context, orderID, itemID string, course models.CourseType) (*models.Order, CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.StageCourse(ctx, orderID, itemID, course)
	if err != nil {
		return nil, CommitResult{}, err
	}
	return st.Order(), st.Commit(ctx), nil
}

// ApplyCancel stages and commits in one call.
func (s *Orders) ApplyCancel(ctx context.Context, orderID string) (*models.Order, CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.StageCancel(ctx, orderID)
	if err != nil {
		return nil, CommitResult{}, err
	}
	return st.Order(), st.Commit(ctx), nil
}

// QueueEntry is one item on a station queue.
type QueueEntry struct {
	OrderID string            `json:"order_id"`
	TableID string            `json:"table_id"`
	Item    *models.OrderItem `json:"item"`
}

// StationQueues groups in-flight items of open orders by the station
// preparing them, ordered by course sequence, course index, then order
// age. This is the kitchen display's station view.
func (s *Orders) StationQueues(ctx context.Context) (map[models.Station][]QueueEntry, error) {
	orders, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	courseRank := make(map[models.CourseType]int)
	for i, course := range models.CourseSequence() {
		courseRank[course] = i
	}

	queues := make(map[models.Station][]QueueEntry)
	for _, station := range models.Stations() {
		queues[station] = []QueueEntry{}
	}
	for _, order := range orders {
		for _, item := range order.Items {
			if !item.Status.IsInFlight() {
				continue
			}
			station := models.StationFor(item.Course, item.Status)
			queues[station] = append(queues[station], QueueEntry{
				OrderID: order.ID,
				TableID: order.TableID,
				Item:    item,
			})
		}
	}

	for station := range queues {
		entries := queues[station]
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].Item, entries[j].Item
			if courseRank[a.Course] != courseRank[b.Course] {
				return courseRank[a.Course] < courseRank[b.Course]
			}
			return a.CourseIndex < b.CourseIndex
		})
	}
	return queues, nil
}
