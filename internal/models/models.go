// Package models provides data models for the triage service.
package models

import "time"

// =============================================================================
// Case Models
// =============================================================================

// TriageLevel is the clinical urgency classification for a case.
type TriageLevel string

const (
	TriageRed    TriageLevel = "red"    // life-threatening
	TriageYellow TriageLevel = "yellow" // urgent
	TriageGreen  TriageLevel = "green"  // non-urgent
)

// Rank returns the ordering rank for a triage level (red sorts first).
func (l TriageLevel) Rank() int {
	switch l {
	case TriageRed:
		return 0
	case TriageYellow:
		return 1
	case TriageGreen:
		return 2
	default:
		return 3
	}
}

// Valid reports whether the triage level is a known value.
func (l TriageLevel) Valid() bool {
	return l == TriageRed || l == TriageYellow || l == TriageGreen
}

// CaseStatus is the lifecycle status of a case.
type CaseStatus string

const (
	StatusWaiting   CaseStatus = "waiting"
	StatusAssigned  CaseStatus = "assigned"
	StatusInConsult CaseStatus = "in_consult"
	StatusComplete  CaseStatus = "complete"
	StatusCancelled CaseStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s CaseStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusAssigned, StatusInConsult, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status is an absorbing state.
func (s CaseStatus) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// Case represents a patient visit awaiting or undergoing care.
type Case struct {
	ID                string      `json:"id"`
	PatientName       string      `json:"patient_name"`
	Species           string      `json:"species,omitempty"`
	Complaint         string      `json:"complaint,omitempty"`
	TriageLevel       TriageLevel `json:"triage_level"`
	Status            CaseStatus  `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	AssignedVetID     *string     `json:"assigned_vet_id,omitempty"`
	ConsultationStart *time.Time  `json:"consultation_start,omitempty"`
	ConsultationEnd   *time.Time  `json:"consultation_end,omitempty"`
	UpdatedAt         *time.Time  `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of the case.
func (c *Case) Clone() *Case {
	dup := *c
	if c.AssignedVetID != nil {
		v := *c.AssignedVetID
		dup.AssignedVetID = &v
	}
	if c.ConsultationStart != nil {
		t := *c.ConsultationStart
		dup.ConsultationStart = &t
	}
	if c.ConsultationEnd != nil {
		t := *c.ConsultationEnd
		dup.ConsultationEnd = &t
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		dup.UpdatedAt = &t
	}
	return &dup
}

// IntakeRequest is the API request for creating a case.
type IntakeRequest struct {
	PatientName string      `json:"patient_name"`
	Species     string      `json:"species,omitempty"`
	Complaint   string      `json:"complaint,omitempty"`
	TriageLevel TriageLevel `json:"triage_level"`
}

// TransitionRequest is the API request for moving a case to a new status.
type TransitionRequest struct {
	Status CaseStatus `json:"status"`
}

// AssignRequest is the API request for assigning a case to a vet.
type AssignRequest struct {
	VetID string `json:"vet_id"`
}

// =============================================================================
// Queue Models
// =============================================================================

// QueueEntry is one waiting case in a published snapshot.
type QueueEntry struct {
	CaseID      string      `json:"case_id"`
	PatientName string      `json:"patient_name"`
	TriageLevel TriageLevel `json:"triage_level"`
	CreatedAt   time.Time   `json:"created_at"`
	Position    int         `json:"position"` // 1-based
}

// QueueSnapshot is the full ordered list of waiting cases at a point in time.
type QueueSnapshot struct {
	TakenAt time.Time    `json:"taken_at"`
	Entries []QueueEntry `json:"entries"`
	Urgent  bool         `json:"urgent,omitempty"` // set on red-triage broadcasts
	CaseID  string       `json:"case_id,omitempty"`
}

// Assignment is one (case, vet) pairing produced by auto-assignment.
type Assignment struct {
	CaseID string `json:"case_id"`
	VetID  string `json:"vet_id"`
}

// EstimateResponse is the API response for a wait estimate.
// The wait is an estimate derived from queue position, not a guarantee.
type EstimateResponse struct {
	CaseID      string `json:"case_id"`
	Position    int    `json:"position"`
	WaitMinutes int    `json:"wait_minutes"`
}

// =============================================================================
// Alerting Models (configuration consumed from the external config service)
// =============================================================================

// RuleCondition compares a sampled metric value against a threshold.
type RuleCondition string

const (
	ConditionAbove  RuleCondition = "above"
	ConditionBelow  RuleCondition = "below"
	ConditionEquals RuleCondition = "equals"
)

// Valid reports whether the condition is a known value.
func (c RuleCondition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow || c == ConditionEquals
}

// Holds reports whether value satisfies the condition against threshold.
func (c RuleCondition) Holds(value, threshold float64) bool {
	switch c {
	case ConditionAbove:
		return value > threshold
	case ConditionBelow:
		return value < threshold
	case ConditionEquals:
		return value == threshold
	default:
		return false
	}
}

// AlertRule is a monitoring rule over a named operational metric.
type AlertRule struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Metric        string        `json:"metric"`
	Condition     RuleCondition `json:"condition"`
	Threshold     float64       `json:"threshold"`
	Duration      time.Duration `json:"-"` // how long the condition must persist before firing
	Severity      string        `json:"severity"` // critical, warning, info
	Notifications []string      `json:"notifications"`
	Enabled       bool          `json:"enabled"`
}

// NotificationChannel is a delivery target for alert notifications.
type NotificationChannel struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Type    string            `json:"type"` // email, sms, webhook, push
	Config  map[string]string `json:"config,omitempty"`
	Enabled bool              `json:"enabled"`
}

// EscalationLevel is one step of an escalation policy.
type EscalationLevel struct {
	Delay    time.Duration `json:"-"` // measured from the instance's TriggeredAt
	Channels []string      `json:"channels"`
}

// EscalationPolicy is an ordered list of levels, ascending by delay.
type EscalationPolicy struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Levels []EscalationLevel `json:"levels"`
}

// RuleBinding is an enabled rule with its resolved escalation policy and
// channels. Policy selection happens in the external config service; the core
// only ever sees resolved bindings.
type RuleBinding struct {
	Rule     *AlertRule
	Policy   *EscalationPolicy
	Channels map[string]*NotificationChannel
}

// =============================================================================
// Alert Instance Models
// =============================================================================

// AlertInstance is a single firing of an alert rule.
type AlertInstance struct {
	ID             string     `json:"id"`
	RuleID         string     `json:"rule_id"`
	RuleName       string     `json:"rule_name"`
	Severity       string     `json:"severity"`
	Metric         string     `json:"metric"`
	Value          float64    `json:"value"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CurrentLevel   int        `json:"current_level"` // index into policy levels, -1 before first dispatch
}

// Open reports whether the instance still blocks a new firing of its rule.
func (a *AlertInstance) Open() bool {
	return a.ResolvedAt == nil
}

// Acknowledged reports whether the instance has been acknowledged.
func (a *AlertInstance) Acknowledged() bool {
	return a.AcknowledgedAt != nil
}

// AcknowledgeRequest is the API request for acknowledging an alert instance.
type AcknowledgeRequest struct {
	By string `json:"by"`
}
