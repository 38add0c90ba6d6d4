package models

import "testing"

func TestCanTransitionTo_Matrix(t *testing.T) {
	allowed := map[ItemStatus][]ItemStatus{
		ItemStatusPending:   {ItemStatusSent, ItemStatusCancelled},
		ItemStatusSent:      {ItemStatusCooking, ItemStatusCancelled},
		ItemStatusCooking:   {ItemStatusPlating},
		ItemStatusPlating:   {ItemStatusReady},
		ItemStatusReady:     {ItemStatusServed},
		ItemStatusServed:    {},
		ItemStatusCancelled: {},
	}

	all := []ItemStatus{
		ItemStatusPending, ItemStatusSent, ItemStatusCooking, ItemStatusPlating,
		ItemStatusReady, ItemStatusServed, ItemStatusCancelled,
	}

	for from, targets := range allowed {
		allowedSet := make(map[ItemStatus]bool)
		for _, to := range targets {
			allowedSet[to] = true
		}
		for _, to := range all {
			got := from.CanTransitionTo(to)
			if got != allowedSet[to] {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, allowedSet[to])
			}
		}
	}
}

func TestCanUndo(t *testing.T) {
	undoable := []ItemStatus{ItemStatusSent, ItemStatusCooking, ItemStatusPlating, ItemStatusReady}
	for _, s := range undoable {
		if !s.CanUndo() {
			t.Errorf("CanUndo(%s) = false, want true", s)
		}
	}

	fixed := []ItemStatus{ItemStatusPending, ItemStatusServed, ItemStatusCancelled}
	for _, s := range fixed {
		if s.CanUndo() {
			t.Errorf("CanUndo(%s) = true, want false", s)
		}
	}
}

func TestUndoTarget_StrictPredecessor(t *testing.T) {
	want := map[ItemStatus]ItemStatus{
		ItemStatusSent:    ItemStatusPending,
		ItemStatusCooking: ItemStatusSent,
		ItemStatusPlating: ItemStatusCooking,
		ItemStatusReady:   ItemStatusPlating,
	}

	for from, expected := range want {
		target, ok := from.UndoTarget()
		if !ok {
			t.Fatalf("UndoTarget(%s) reported no predecessor", from)
		}
		if target != expected {
			t.Errorf("UndoTarget(%s) = %s, want %s", from, target, expected)
		}
	}

	for _, s := range []ItemStatus{ItemStatusPending, ItemStatusServed, ItemStatusCancelled} {
		if _, ok := s.UndoTarget(); ok {
			t.Errorf("UndoTarget(%s) reported a predecessor, want none", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !ItemStatusServed.IsTerminal() || !ItemStatusCancelled.IsTerminal() {
		t.Error("served and cancelled should be terminal")
	}
	for _, s := range []ItemStatus{ItemStatusPending, ItemStatusSent, ItemStatusCooking, ItemStatusPlating, ItemStatusReady} {
		if s.IsTerminal() {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestIsValid(t *testing.T) {
	if ItemStatus("burnt").IsValid() {
		t.Error("IsValid(\"burnt\") = true, want false")
	}
	if !ItemStatusPlating.IsValid() {
		t.Error("IsValid(plating) = false, want true")
	}
}
