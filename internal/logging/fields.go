package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService    = "service"
	FieldCaseID     = "case_id"
	FieldVetID      = "vet_id"
	FieldRuleID     = "rule_id"
	FieldInstanceID = "instance_id"
	FieldChannelID  = "channel_id"
	FieldMetric     = "metric"
	FieldLevel      = "escalation_level"
	FieldStatus     = "status"
	FieldTriage     = "triage_level"
	FieldError      = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// CaseID returns a slog attribute for a case ID.
func CaseID(id string) slog.Attr {
	return slog.String(FieldCaseID, id)
}

// VetID returns a slog attribute for a vet ID.
func VetID(id string) slog.Attr {
	return slog.String(FieldVetID, id)
}

// RuleID returns a slog attribute for an alert rule ID.
func RuleID(id string) slog.Attr {
	return slog.String(FieldRuleID, id)
}

// InstanceID returns a slog attribute for an alert instance ID.
func InstanceID(id string) slog.Attr {
	return slog.String(FieldInstanceID, id)
}

// ChannelID returns a slog attribute for a notification channel ID.
func ChannelID(id string) slog.Attr {
	return slog.String(FieldChannelID, id)
}

// Metric returns a slog attribute for a metric name.
func Metric(name string) slog.Attr {
	return slog.String(FieldMetric, name)
}

// Level returns a slog attribute for an escalation level index.
func Level(idx int) slog.Attr {
	return slog.Int(FieldLevel, idx)
}

// Triage returns a slog attribute for a triage level.
func Triage(level string) slog.Attr {
	return slog.String(FieldTriage, level)
}

// Status returns a slog attribute for a case status.
func Status(status string) slog.Attr {
	return slog.String(FieldStatus, status)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
