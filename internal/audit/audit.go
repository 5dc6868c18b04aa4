// Package audit defines the audit trail written by every interview transition
// and governance mutation.
package audit

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"talent-scheduler/internal/interview"
)

// Action types.
const (
	InterviewCreate     = "INTERVIEW_CREATE"
	InterviewUpdate     = "INTERVIEW_UPDATE"
	InterviewSlots      = "INTERVIEW_SLOTS_PROPOSED"
	InterviewSlotBooked = "INTERVIEW_SLOT_BOOKED"
	InterviewInviteSent = "INTERVIEW_INVITE_SENT"
	InterviewCompleted  = "INTERVIEW_COMPLETED"
	InterviewNoShow     = "INTERVIEW_NO_SHOW"
	InterviewCancelled  = "INTERVIEW_CANCELLED"
	InterviewPassed     = "INTERVIEW_PASSED"
	InterviewFailed     = "INTERVIEW_FAILED"
	HiringInitiated     = "HIRING_INITIATED"
	RoleCreate          = "ROLE_CREATE"
	RoleUpdate          = "ROLE_UPDATE"
	RoleDelete          = "ROLE_DELETE"
	RoleAssign          = "ROLE_ASSIGN"
	RoleRevoke          = "ROLE_REVOKE"
	AccessDenied        = "ACCESS_DENIED"
	LogExport           = "AUDIT_LOG_EXPORT"
	MatrixExport        = "ACCESS_MATRIX_EXPORT"
)

// Actor identifies who performed an action.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// PublicBooker is the actor recorded for bookings made through a public link.
var PublicBooker = Actor{UserID: "candidate", Email: "candidate-booking", Role: "candidate"}

// Entry is one audit record.
type Entry struct {
	ID            string         `json:"log_id"`
	Timestamp     time.Time      `json:"timestamp"`
	UserID        string         `json:"user_id"`
	UserEmail     string         `json:"user_email"`
	UserRole      string         `json:"user_role"`
	ClientID      string         `json:"client_id,omitempty"`
	ActionType    string         `json:"action_type"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id,omitempty"`
	PreviousValue map[string]any `json:"previous_value,omitempty"`
	NewValue      map[string]any `json:"new_value,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// New stamps an entry for actor.
func New(actor Actor, action, entityType, entityID, clientID string, now time.Time) Entry {
	return Entry{
		ID:         interview.NewID("log", 12),
		Timestamp:  now.UTC(),
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   actor.Role,
		ClientID:   clientID,
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// Filter narrows an audit query. Zero values are ignored.
type Filter struct {
	ClientID   string
	UserID     string
	ActionType string
	EntityType string
	From       *time.Time
	To         *time.Time
	Limit      int
	Skip       int
}

// DefaultLimit is the page size when none is requested.
const DefaultLimit = 100

// ExportLimit caps CSV exports.
const ExportLimit = 10000

// Matches reports whether e passes f, ignoring paging.
func (f Filter) Matches(e Entry) bool {
	switch {
	case f.ClientID != "" && e.ClientID != f.ClientID,
		f.UserID != "" && e.UserID != f.UserID,
		f.ActionType != "" && e.ActionType != f.ActionType,
		f.EntityType != "" && e.EntityType != f.EntityType,
		f.From != nil && e.Timestamp.Before(*f.From),
		f.To != nil && e.Timestamp.After(*f.To):
		return false
	}
	return true
}

var csvHeader = []string{
	"log_id", "timestamp", "user_email", "user_role", "client_id",
	"action_type", "entity_type", "entity_id", "previous_value", "new_value",
}

// WriteCSV writes entries in the export layout.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.ID, e.Timestamp.Format(time.RFC3339), e.UserEmail, e.UserRole, e.ClientID,
			e.ActionType, e.EntityType, e.EntityID, jsonCell(e.PreviousValue), jsonCell(e.NewValue),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func jsonCell(v map[string]any) string {
	if len(v) == 0 {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
