// Package notify produces in-app notifications and candidate emails for
// interview transitions.
package notify

import (
	"strings"
	"time"

	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/interview"
)

// Notification types.
const (
	TypeInterviewBooked = "interview_booked"
	TypeInviteSent      = "interview_invite_sent"
	TypeInvitePending   = "interview_invite_pending"
	TypeInterviewPassed = "interview_passed"
	TypeInterviewFailed = "interview_failed"
	TypeHiring          = "hiring_initiated"
	TypeNoShow          = "interview_no_show"
)

// Notification is an in-app message addressed by role, by user email or, for
// client users, by client.
type Notification struct {
	ID         string    `json:"notification_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	ClientID   string    `json:"client_id,omitempty"`
	ForRoles   []string  `json:"for_roles,omitempty"`
	ForUsers   []string  `json:"for_users,omitempty"`
	ReadBy     []string  `json:"-"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
}

// Recipient is the reader a notification list is rendered for.
type Recipient struct {
	Email    string
	Role     string
	ClientID string
}

// VisibleTo reports whether r is an addressee of n.
func (n Notification) VisibleTo(r Recipient) bool {
	for _, role := range n.ForRoles {
		if role == r.Role {
			return true
		}
	}
	for _, u := range n.ForUsers {
		if strings.EqualFold(u, r.Email) {
			return true
		}
	}
	return r.Role == governance.RoleClientUser && n.ClientID != "" && n.ClientID == r.ClientID
}

// ReadByEmail reports whether email already read n.
func (n Notification) ReadByEmail(email string) bool {
	for _, e := range n.ReadBy {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// ForInterview addresses a notification about iv to agency staff and the
// interview's client.
func ForInterview(typ, title, message string, iv *interview.Interview, createdBy string, now time.Time) Notification {
	return Notification{
		ID:         interview.NewID("notif", 12),
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: "interview",
		EntityID:   iv.ID,
		ClientID:   iv.ClientID,
		ForRoles:   []string{governance.RoleAdmin, governance.RoleRecruiter},
		ForUsers:   nonEmpty(iv.CreatedBy),
		CreatedAt:  now.UTC(),
		CreatedBy:  createdBy,
	}
}

func nonEmpty(s ...string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// displayName falls back to a generic label for missing names.
func displayName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
