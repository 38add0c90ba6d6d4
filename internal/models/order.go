package models

import (
	"fmt"
	"time"
)

// UndoReason is the typed reason code required for every undo.
type UndoReason string

const (
	UndoReasonKitchenError    UndoReason = "kitchen_error"
	UndoReasonCustomerRequest UndoReason = "customer_request"
	UndoReasonWrongItem       UndoReason = "wrong_item"
	UndoReasonOutOfStock      UndoReason = "out_of_stock"
	UndoReasonOther           UndoReason = "other"
)

var validUndoReasons = map[UndoReason]bool{
	UndoReasonKitchenError:    true,
	UndoReasonCustomerRequest: true,
	UndoReasonWrongItem:       true,
	UndoReasonOutOfStock:      true,
	UndoReasonOther:           true,
}

// UndoEntry is one record of the order's append-only undo log.
type UndoEntry struct {
	ItemID       string     `json:"item_id"`
	Reason       UndoReason `json:"reason"`
	CustomReason string     `json:"custom_reason,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Order owns an ordered collection of items. Items have no existence
// outside an order; all lifecycle mutations go through the order so the
// undo history stays consistent with item state.
type Order struct {
	ID          string       `json:"id"`
	TableID     string       `json:"table_id"`
	Items       []*OrderItem `json:"items"`
	UndoHistory []UndoEntry  `json:"undo_history,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Item returns the item with the given id, or nil.
func (o *Order) Item(itemID string) *OrderItem {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// NextCourseIndex counts the items already assigned to course,
// excluding the item being (re)assigned, giving stable append ordering
// within a course.
func (o *Order) NextCourseIndex(course CourseType, excludeItemID string) int {
	n := 0
	for _, item := range o.Items {
		if item.ID != excludeItemID && item.Course == course {
			n++
		}
	}
	return n
}

// TransitionItem advances one item along the lifecycle. The order is
// untouched on failure.
func (o *Order) TransitionItem(itemID string, next ItemStatus, now time.Time) (StatusChange, error) {
	item := o.Item(itemID)
	if item == nil {
		return StatusChange{}, fmt.Errorf("%w: no item %q in order %s", ErrValidation, itemID, o.ID)
	}
	return item.Transition(next, now)
}

// UndoItem reverses one item's last forward transition by exactly one
// step and appends a single audit entry to the undo history. Nothing is
// mutated when the item's status has no predecessor or the reason code
// is unknown.
func (o *Order) UndoItem(itemID string, reason UndoReason, customReason string, now time.Time) (StatusChange, error) {
	item := o.Item(itemID)
	if item == nil {
		return StatusChange{}, fmt.Errorf("%w: no item %q in order %s", ErrValidation, itemID, o.ID)
	}
	if !validUndoReasons[reason] {
		return StatusChange{}, fmt.Errorf("%w: unknown undo reason %q", ErrValidation, reason)
	}
	if !item.Status.CanUndo() {
		return StatusChange{}, fmt.Errorf("%w: status %s", ErrUndoNotAllowed, item.Status)
	}

	change, err := item.applyUndo(now)
	if err != nil {
		return StatusChange{}, err
	}

	o.UndoHistory = append(o.UndoHistory, UndoEntry{
		ItemID:       itemID,
		Reason:       reason,
		CustomReason: customReason,
		Timestamp:    now,
	})
	return change, nil
}

// Subtotal sums line totals over non-cancelled items. Cancelled items
// never bill.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		if item.Status == ItemStatusCancelled {
			continue
		}
		sum += item.LineTotal()
	}
	return sum
}

// Tax returns the tax due on the subtotal at the given rate.
func (o *Order) Tax(rate float64) float64 {
	return o.Subtotal() * rate
}

// Total returns subtotal plus tax.
func (o *Order) Total(rate float64) float64 {
	return o.Subtotal() + o.Tax(rate)
}

// DeriveStatus folds item statuses into one aggregate order status.
//
// Cancelled items are ignored unless every item is cancelled. Among the
// rest: all served wins; anything in flight makes the order preparing,
// or ready once ready items outnumber the other in-flight ones; a mix
// of pending and served items stays pending until the kitchen picks the
// remainder up.
func (o *Order) DeriveStatus() OrderStatus {
	if len(o.Items) == 0 {
		return OrderStatusPending
	}

	var served, inFlight, ready, pending int
	for _, item := range o.Items {
		switch {
		case item.Status == ItemStatusCancelled:
			// skipped
		case item.Status == ItemStatusServed:
			served++
		case item.Status == ItemStatusReady:
			ready++
			inFlight++
		case item.Status.IsInFlight():
			inFlight++
		default:
			pending++
		}
	}

	active := served + inFlight + pending
	switch {
	case active == 0:
		return OrderStatusCancelled
	case inFlight == 0 && pending == 0:
		return OrderStatusServed
	case inFlight > 0 && ready > inFlight-ready:
		return OrderStatusReady
	case inFlight > 0:
		return OrderStatusPreparing
	default:
		return OrderStatusPending
	}
}

// CourseTiming summarizes kitchen timing for one course of an order.
type CourseTiming struct {
	Course       CourseType    `json:"course"`
	FirstPrepAt  *time.Time    `json:"first_prep_at,omitempty"`
	LastServedAt *time.Time    `json:"last_served_at,omitempty"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Complete     bool          `json:"complete"`
}

// CourseTimings reports, for each course present on the order, the
// earliest prep start and the latest serve time among its items. A
// course is complete only when every non-cancelled item is served and
// both ends are known; Elapsed is zero otherwise. Courses come back in
// serving order.
func (o *Order) CourseTimings() []CourseTiming {
	byCourse := make(map[CourseType][]*OrderItem)
	for _, item := range o.Items {
		byCourse[item.Course] = append(byCourse[item.Course], item)
	}

	var out []CourseTiming
	for _, course := range courseSequence {
		items, ok := byCourse[course]
		if !ok {
			continue
		}
		timing := CourseTiming{Course: course}
		allServed := true
		for _, item := range items {
			if item.Status == ItemStatusCancelled {
				continue
			}
			if item.PrepStartAt != nil {
				if timing.FirstPrepAt == nil || item.PrepStartAt.Before(*timing.FirstPrepAt) {
					timing.FirstPrepAt = item.PrepStartAt
				}
			}
			if item.ServedAt != nil {
				if timing.LastServedAt == nil || item.ServedAt.After(*timing.LastServedAt) {
					timing.LastServedAt = item.ServedAt
				}
			} else {
				allServed = false
			}
		}
		if allServed && timing.FirstPrepAt != nil && timing.LastServedAt != nil {
			timing.Complete = true
			timing.Elapsed = timing.LastServedAt.Sub(*timing.FirstPrepAt)
		}
		out = append(out, timing)
	}
	return out
}

// Open reports whether any item is still pending or in flight.
func (o *Order) Open() bool {
	for _, item := range o.Items {
		if !item.Status.IsTerminal() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the order, used by the service layer to
// stage mutations before commit.
func (o *Order) Clone() *Order {
	cp := &Order{
		ID:        o.ID,
		TableID:   o.TableID,
		CreatedAt: o.CreatedAt,
	}
	cp.Items = make([]*OrderItem, len(o.Items))
	for idx, item := range o.Items {
		cp.Items[idx] = item.Clone()
	}
	if len(o.UndoHistory) > 0 {
		cp.UndoHistory = append([]UndoEntry(nil), o.UndoHistory...)
	}
	return cp
}
