package app

import (
	"context"
	"time"

	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/interview"
	"talent-scheduler/internal/notify"
)

// Client, Job and Candidate are owned by other services. The scheduler reads
// them and only writes the candidate pipeline status.
type Client struct {
	ID          string `json:"client_id"`
	CompanyName string `json:"company_name"`
}

type Job struct {
	ID       string `json:"job_id"`
	ClientID string `json:"client_id"`
	Title    string `json:"title"`
}

type Candidate struct {
	ID           string `json:"candidate_id"`
	JobID        string `json:"job_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PortalID     string `json:"candidate_portal_id,omitempty"`
	Status       string `json:"status"`
	CurrentRound int    `json:"current_round"`
}

// InterviewQuery filters interview lists. Zero values are ignored.
type InterviewQuery struct {
	JobID        string
	CandidateID  string
	CandidateIDs []string
	ClientID     string
	Status       interview.Status
	Skip         int
	Limit        int
}

// Mutation edits a locked interview in place. A non-nil spawn is inserted in
// the same transaction.
type Mutation func(iv *interview.Interview) (spawn *interview.Interview, err error)

type InterviewStore interface {
	CreateInterview(ctx context.Context, iv *interview.Interview) error
	GetInterview(ctx context.Context, id string) (*interview.Interview, error)
	ListInterviews(ctx context.Context, q InterviewQuery) ([]interview.Interview, error)
	// MutateInterview runs fn under a row lock and persists the result. The
	// first concurrent writer wins; later ones observe its changes.
	MutateInterview(ctx context.Context, id string, fn Mutation) (updated, spawned *interview.Interview, err error)
	CountByStatus(ctx context.Context, clientID string) (map[interview.Status]int, error)
	// ConfirmedWithoutInvite lists Confirmed interviews starting in [from, to).
	ConfirmedWithoutInvite(ctx context.Context, from, to time.Time) ([]interview.Interview, error)
}

type DirectoryStore interface {
	GetClient(ctx context.Context, id string) (*Client, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	GetCandidate(ctx context.Context, id string) (*Candidate, error)
	CandidatesForPortal(ctx context.Context, portalID, email string) ([]Candidate, error)
	UpdateCandidateStatus(ctx context.Context, id, status string, round int) error
	GetUserByEmail(ctx context.Context, email string) (*governance.User, error)
	// FindUser matches on user id or email.
	FindUser(ctx context.Context, idOrEmail string) (*governance.User, error)
	ListClientUsers(ctx context.Context, clientID string) ([]governance.User, error)
}

type GovernanceStore interface {
	ListRoles(ctx context.Context, clientID string) ([]governance.Role, error)
	GetRole(ctx context.Context, id string) (*governance.Role, error)
	CreateRole(ctx context.Context, r *governance.Role) error
	UpdateRole(ctx context.Context, r *governance.Role) error
	// DeleteRole removes the role and every assignment of it, returning the
	// number of assignments removed.
	DeleteRole(ctx context.Context, id string) (int64, error)
	ListAssignments(ctx context.Context, clientID, userID string) ([]governance.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*governance.Assignment, error)
	// CreateAssignment returns a conflict when the user already holds the role.
	CreateAssignment(ctx context.Context, a *governance.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
}

type AuditStore interface {
	AppendAudit(ctx context.Context, e audit.Entry) error
	ListAudit(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n notify.Notification) error
	ListNotifications(ctx context.Context, r notify.Recipient, unreadOnly bool, limit int) ([]notify.Notification, error)
	CountUnread(ctx context.Context, r notify.Recipient) (int, error)
	// MarkNotificationRead returns not found when id is absent or not visible to r.
	MarkNotificationRead(ctx context.Context, id string, r notify.Recipient) error
	MarkAllNotificationsRead(ctx context.Context, r notify.Recipient) (int64, error)
	HasNotification(ctx context.Context, typ, entityID string) (bool, error)
}

// Store is everything the service persists.
type Store interface {
	InterviewStore
	DirectoryStore
	GovernanceStore
	AuditStore
	NotificationStore
}
