// Package metrics exposes lifecycle counters on the default prometheus
// registry, served by the metrics endpoint in cmd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts successful item status transitions by edge.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_transitions_total",
		Help: "Successful order item status transitions",
	}, []string{"from", "to"})

	// RejectedTransitions counts transition attempts outside the table.
	RejectedTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_item_transitions_rejected_total",
		Help: "Order item transitions rejected as invalid",
	})

	// Undos counts successful single-step reversals by reason code.
	Undos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_undos_total",
		Help: "Successful order item undo operations",
	}, []string{"reason"})

	// FailedCommits counts local mutations whose persistence mirror
	// call failed.
	FailedCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_commit_failures_total",
		Help: "Order mutations that failed to persist",
	})

	// OverdueCourses counts courses flagged by the pacing monitor.
	OverdueCourses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "course_pacing_overdue_total",
		Help: "Courses that exceeded the pacing threshold",
	}, []string{"course"})
)
