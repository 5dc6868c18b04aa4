// Package interview defines the interview record, its slot proposal rules and
// the state machine every actor goes through.
//
// Status graph:
//
//	Awaiting Candidate Confirmation ──► Confirmed ──► Scheduled ──► Completed ──► Passed | Failed
//	         │                            │  │           │  │                        ▲
//	         │                            │  └─► No Show ◄┘  └────────────────────────┘
//	         └────────────────────────────┴──────────┴──────► Cancelled
//
// Passed, Failed, No Show and Cancelled are terminal. A pass decision spawns a
// new interview for the next round instead of reopening the old one.
package interview

import "fmt"

// Status values mirror the interview_status column.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusAwaiting  Status = "Awaiting Candidate Confirmation"
	StatusConfirmed Status = "Confirmed"
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusPassed    Status = "Passed"
	StatusFailed    Status = "Failed"
	StatusNoShow    Status = "No Show"
	StatusCancelled Status = "Cancelled"
)

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusDraft, StatusAwaiting, StatusConfirmed, StatusScheduled, StatusCompleted,
	StatusPassed, StatusFailed, StatusNoShow, StatusCancelled,
}

var validTransitions = map[Status][]Status{
	StatusAwaiting:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusScheduled, StatusCompleted, StatusNoShow, StatusCancelled},
	StatusScheduled: {StatusCompleted, StatusNoShow, StatusCancelled, StatusPassed, StatusFailed},
	StatusCompleted: {StatusPassed, StatusFailed},
}

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

// IsTransitionAllowed reports whether from → to is an edge of the graph.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok && s != StatusDraft
}

// IsClosed reports whether s can no longer be cancelled. Completed is closed
// for cancellation even though a decision may still follow it.
func IsClosed(s Status) bool {
	return s == StatusCompleted || IsTerminal(s)
}

// Mode is how the interview takes place.
type Mode string

const (
	ModeVideo  Mode = "Video"
	ModePhone  Mode = "Phone"
	ModeOnsite Mode = "Onsite"
)

// ParseMode converts a raw string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeVideo, ModePhone, ModeOnsite:
		return m, nil
	}
	return "", fmt.Errorf("unknown interview mode %q", s)
}
