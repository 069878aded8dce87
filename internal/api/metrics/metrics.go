// Package metrics defines and registers all custom Prometheus metrics for the
// newsroom API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through
// promauto when the package is loaded.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

const namespace = "newsroom"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthAttemptsTotal counts passes through an authentication gate.
// Labels:
//   - transport: "rest" or "soap"
//   - outcome: exempt, authenticated, missing, rejected, error
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of calls seen by the authentication gates, by outcome.",
	},
	[]string{"transport", "outcome"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// SecurityEventsTotal counts security events handed to the auditor.
// Label:
//   - kind: event kind (e.g. "login_failed", "token_revoked")
var SecurityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_total",
		Help:      "Total number of security events recorded, by kind.",
	},
	[]string{"kind"},
)

// AuditEventsDroppedTotal counts events the audit dispatcher could not queue.
var AuditEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of security events dropped because the audit queue was full.",
	},
	[]string{"kind"},
)

// ObserveAuth is the observe callback handed to authn.NewGate.
func ObserveAuth(transport string, outcome authn.Outcome) {
	AuthAttemptsTotal.WithLabelValues(transport, string(outcome)).Inc()
}

// ObserveAuditDrop is the drop callback handed to the audit dispatcher.
func ObserveAuditDrop(kind domain.SecurityEventKind) {
	AuditEventsDroppedTotal.WithLabelValues(string(kind)).Inc()
}

// CountingAuditor counts every event before forwarding it.
type CountingAuditor struct {
	next ports.SecurityAuditor
}

func NewCountingAuditor(next ports.SecurityAuditor) *CountingAuditor {
	return &CountingAuditor{next: next}
}

func (a *CountingAuditor) Record(ctx context.Context, event domain.SecurityEvent) {
	SecurityEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	a.next.Record(ctx, event)
}
