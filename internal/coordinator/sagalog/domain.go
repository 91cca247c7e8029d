// Package sagalog records the state transitions of saga executions.
//
// Every transition appends one row. The latest row of a saga is its current
// state, which the checkout reads back for two things: answering status
// queries, and finding checkouts that stored the order but left the cart
// uncleared (COMPLETED_WITH_ERRORS) so they can be re-driven.
package sagalog

import "time"

type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusStepFailed   Status = "STEP_FAILED"
	StatusCompensating Status = "COMPENSATING"
	StatusCompleted    Status = "COMPLETED"
	StatusDegraded     Status = "COMPLETED_WITH_ERRORS"
	StatusFailed       Status = "FAILED"
)

// Terminal reports whether no further transition is expected without outside
// intervention.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDegraded, StatusFailed:
		return true
	}
	return false
}

// SagaLog is one recorded transition.
type SagaLog struct {
	// SagaID names the execution. Checkout uses the order id.
	SagaID      string
	Status      Status
	CurrentStep string

	// Payload is the JSON input, set on the STARTED row only.
	Payload string

	// ErrorMessages is a JSON array of the failures seen so far.
	ErrorMessages string

	// TraceID and SpanID come from the span active when the row was
	// written; both are empty without tracing.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
