// Package metrics exposes the engine's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verifications counts identity checks by outcome
	// (found, not_found, already_onboarded, error).
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "verifications_total",
		Help:      "Identity verification attempts by outcome.",
	}, []string{"outcome"})

	// Decisions counts offer decisions by kind (accepted, disputed).
	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "offer_decisions_total",
		Help:      "Recorded offer decisions by kind.",
	}, []string{"kind"})

	// DisputesResolved counts disputes closed through resolution sessions.
	DisputesResolved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "disputes_resolved_total",
		Help:      "Disputes resolved via conversation.",
	})

	// DocumentsSigned counts individual document signatures.
	DocumentsSigned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "documents_signed_total",
		Help:      "Documents signed, excluding idempotent retries.",
	})

	// OnboardingsCompleted counts journeys reaching the terminal complete state.
	OnboardingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "onboardings_completed_total",
		Help:      "Journeys that reached onboarding_complete.",
	})

	// OutboxPublishFailures counts dispatcher publish attempts that failed.
	OutboxPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "onboardflow",
		Name:      "outbox_publish_failures_total",
		Help:      "Outbox events whose broker publish failed.",
	})
)
