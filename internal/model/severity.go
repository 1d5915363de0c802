package model

// Severity is the urgency tag a check attaches to an error descriptor so
// the coordinator can triage without parsing the message.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DefaultSeverity is used when a check raises an error without picking one.
const DefaultSeverity = SeverityMedium
