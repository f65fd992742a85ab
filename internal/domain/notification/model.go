package notification

import "time"

// Priority represents alert priority
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// AlertType classifies operator alerts
type AlertType string

const (
	// AlertLedgerFatal is raised when a ledger invariant cannot be upheld.
	AlertLedgerFatal AlertType = "ledger_fatal"
	// AlertStaleReservations is raised when the sweeper reclaims held units.
	AlertStaleReservations AlertType = "stale_reservations"
	// AlertGeneratorDown is raised on repeated generator failures.
	AlertGeneratorDown AlertType = "generator_down"
)

// Alert is a message for the operators, never for end users.
type Alert struct {
	Type      AlertType         `json:"type"`
	Priority  Priority          `json:"priority"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
