package models

// ItemStatus represents the lifecycle state of a single order item
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusSent      ItemStatus = "sent"
	ItemStatusCooking   ItemStatus = "cooking"
	ItemStatusPlating   ItemStatus = "plating"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
	ItemStatusCancelled ItemStatus = "cancelled"
)

// forwardTransitions encodes the directed edges of the item lifecycle.
// The chain is linear except for the cancellation branch, which is only
// available before the kitchen starts cooking.
var forwardTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusPending:   {ItemStatusSent, ItemStatusCancelled},
	ItemStatusSent:      {ItemStatusCooking, ItemStatusCancelled},
	ItemStatusCooking:   {ItemStatusPlating},
	ItemStatusPlating:   {ItemStatusReady},
	ItemStatusReady:     {ItemStatusServed},
	ItemStatusServed:    {},
	ItemStatusCancelled: {},
}

// undoTargets maps each undoable status to its strict predecessor.
var undoTargets = map[ItemStatus]ItemStatus{
	ItemStatusSent:    ItemStatusPending,
	ItemStatusCooking: ItemStatusSent,
	ItemStatusPlating: ItemStatusCooking,
	ItemStatusReady:   ItemStatusPlating,
}

// IsValid reports whether s is one of the enumerated item statuses.
func (s ItemStatus) IsValid() bool {
	_, ok := forwardTransitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusServed || s == ItemStatusCancelled
}

// IsInFlight reports whether the item has been accepted by the kitchen
// but not yet served or cancelled.
func (s ItemStatus) IsInFlight() bool {
	switch s {
	case ItemStatusSent, ItemStatusCooking, ItemStatusPlating, ItemStatusReady:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is directly reachable from s.
// Items never skip a state forward.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, allowed := range forwardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanUndo reports whether a single-step reversal is defined for s.
// Pending has no predecessor and terminal states are never reversed.
func (s ItemStatus) CanUndo() bool {
	_, ok := undoTargets[s]
	return ok
}

// UndoTarget returns the strict predecessor of s. The second return
// value is false when no reversal is defined.
func (s ItemStatus) UndoTarget() (ItemStatus, bool) {
	target, ok := undoTargets[s]
	return target, ok
}

func (s ItemStatus) String() string {
	return string(s)
}

// OrderStatus represents the derived aggregate state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)
