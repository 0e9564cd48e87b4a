// Package messaging defines standard subject names for the triage message bus.
package messaging

// Subject constants for the triage message bus.
// Follow the pattern: {domain}.{resource}.{action}
const (
	// Queue subjects - published by the queue manager
	SubjectQueueSnapshot  = "triage.queue.snapshot"  // Full queue snapshot after each state change
	SubjectQueueBroadcast = "triage.queue.broadcast" // Urgent red-triage broadcast to all vets

	// Case lifecycle subjects
	SubjectCasesCreated  = "triage.cases.created"  // New case from intake
	SubjectCasesAssigned = "triage.cases.assigned" // Case assigned to a vet
	SubjectCasesUpdated  = "triage.cases.updated"  // Case status changed

	// Alert lifecycle subjects - published by the escalation engine
	SubjectAlertsRaised       = "triage.alerts.raised"
	SubjectAlertsAcknowledged = "triage.alerts.acknowledged"
	SubjectAlertsResolved     = "triage.alerts.resolved"

	// Push notification subject consumed by vet-facing clients
	SubjectNotifyPush = "triage.notify.push"
)
