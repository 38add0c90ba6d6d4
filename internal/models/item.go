package models

import (
	"fmt"
	"time"
)

// CourseType represents the serving phase an item belongs to.
type CourseType string

const (
	CourseAppetizer CourseType = "appetizer"
	CourseStarter   CourseType = "starter"
	CourseSoup      CourseType = "soup"
	CourseMain      CourseType = "main"
	CourseDessert   CourseType = "dessert"
	CourseDrink     CourseType = "drink"
)

// courseSequence fixes the serving order of courses for display and
// timing summaries.
var courseSequence = []CourseType{
	CourseAppetizer,
	CourseStarter,
	CourseSoup,
	CourseMain,
	CourseDessert,
	CourseDrink,
}

// IsValid reports whether c is one of the six enumerated course types.
func (c CourseType) IsValid() bool {
	for _, known := range courseSequence {
		if c == known {
			return true
		}
	}
	return false
}

// CourseSequence returns the courses in serving order.
func CourseSequence() []CourseType {
	out := make([]CourseType, len(courseSequence))
	copy(out, courseSequence)
	return out
}

// OrderItem represents a single line of an order. Items are created
// pending when the order is placed, mutated only through status-change
// or undo calls, and never deleted, only marked cancelled.
type OrderItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	Status      ItemStatus `json:"status"`
	Course      CourseType `json:"course"`
	CourseIndex int        `json:"course_index"`
	Comment     *Comment   `json:"comment,omitempty"`
	PrepStartAt *time.Time `json:"prep_start_at,omitempty"`
	ServedAt    *time.Time `json:"served_at,omitempty"`
}

// StatusChange is the semantic payload published to kitchen-display and
// table-view subscribers after a successful transition or undo.
type StatusChange struct {
	ItemID    string     `json:"item_id"`
	OldStatus ItemStatus `json:"old_status"`
	NewStatus ItemStatus `json:"new_status"`
	Timestamp time.Time  `json:"timestamp"`
}

// Transition moves the item to next if next is directly reachable from
// the current status. Entering cooking stamps PrepStartAt (only if
// unset, so an undone and re-fired item keeps its original prep time);
// entering served stamps ServedAt. On failure the item is untouched.
func (i *OrderItem) Transition(next ItemStatus, now time.Time) (StatusChange, error) {
	if !next.IsValid() {
		return StatusChange{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if !i.Status.CanTransitionTo(next) {
		return StatusChange{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, next)
	}

	change := StatusChange{ItemID: i.ID, OldStatus: i.Status, NewStatus: next, Timestamp: now}
	i.Status = next

	switch next {
	case ItemStatusCooking:
		if i.PrepStartAt == nil {
			t := now
			i.PrepStartAt = &t
		}
	case ItemStatusServed:
		t := now
		i.ServedAt = &t
	}

	return change, nil
}

// applyUndo steps the item back to the strict predecessor of its
// current status and clears any timestamp whose setting condition the
// undone state no longer satisfies. Reason bookkeeping lives on the
// order, which owns the undo history.
func (i *OrderItem) applyUndo(now time.Time) (StatusChange, error) {
	target, ok := i.Status.UndoTarget()
	if !ok {
		return StatusChange{}, fmt.Errorf("%w: no predecessor for status %s", ErrUndoNotAllowed, i.Status)
	}

	change := StatusChange{ItemID: i.ID, OldStatus: i.Status, NewStatus: target, Timestamp: now}
	i.Status = target

	// cooking set PrepStartAt; undoing out of cooking clears it.
	if change.OldStatus == ItemStatusCooking {
		i.PrepStartAt = nil
	}
	if change.OldStatus == ItemStatusServed {
		i.ServedAt = nil
	}

	return change, nil
}

// SetCourse reassigns the item's course. Reassignment is unconditional
// and has no effect on status; callers compute the index with
// Order.NextCourseIndex to keep stable per-course append ordering.
func (i *OrderItem) SetCourse(course CourseType, index int) error {
	if !course.IsValid() {
		return fmt.Errorf("%w: unknown course type %q", ErrValidation, course)
	}
	if index < 0 {
		return fmt.Errorf("%w: course index must be non-negative", ErrValidation)
	}
	i.Course = course
	i.CourseIndex = index
	return nil
}

// SetComment validates and attaches an annotation. The item is
// untouched when validation fails.
func (i *OrderItem) SetComment(text string, presets []PresetKey, visibility []Role) error {
	comment, err := NewComment(text, presets, visibility)
	if err != nil {
		return err
	}
	i.Comment = comment
	return nil
}

// LineTotal returns quantity times unit price.
func (i *OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Clone returns a deep copy of the item.
func (i *OrderItem) Clone() *OrderItem {
	cp := *i
	if i.PrepStartAt != nil {
		t := *i.PrepStartAt
		cp.PrepStartAt = &t
	}
	if i.ServedAt != nil {
		t := *i.ServedAt
		cp.ServedAt = &t
	}
	if i.Comment != nil {
		c := Comment{
			Text:       i.Comment.Text,
			Presets:    append([]PresetKey(nil), i.Comment.Presets...),
			Visibility: append([]Role(nil), i.Comment.Visibility...),
		}
		cp.Comment = &c
	}
	return &cp
}
