package interview

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MaxSlots        = 5
	MaxRound        = 10
	MinDuration     = 15
	MaxDuration     = 240
	DefaultTimeZone = "Asia/Kolkata"
)

// Slot is one proposed time window. end_time is start_time plus the
// interview duration unless the proposer sent an explicit end.
type Slot struct {
	ID              string    `json:"slot_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	IsAvailable     bool      `json:"is_available"`
}

// Interview is one round of a candidate/job pipeline.
type Interview struct {
	ID          string `json:"interview_id"`
	JobID       string `json:"job_id"`
	CandidateID string `json:"candidate_id"`
	ClientID    string `json:"client_id"`

	Round     int    `json:"interview_round"`
	RoundName string `json:"round_name"`

	Mode            Mode   `json:"interview_mode"`
	DurationMinutes int    `json:"interview_duration"`
	TimeZone        string `json:"time_zone"`

	Slots          []Slot     `json:"proposed_slots"`
	SelectedSlotID string     `json:"selected_slot_id,omitempty"`
	ScheduledStart *time.Time `json:"scheduled_start_time"`
	ScheduledEnd   *time.Time `json:"scheduled_end_time"`

	MeetingLink     string `json:"meeting_link,omitempty"`
	Instructions    string `json:"additional_instructions,omitempty"`
	CalendarEventID string `json:"calendar_event_id,omitempty"`
	CalendarLink    string `json:"calendar_link,omitempty"`

	Status               Status     `json:"interview_status"`
	InviteSent           bool       `json:"invite_sent"`
	InviteSentBy         string     `json:"invite_sent_by,omitempty"`
	InviteSentAt         *time.Time `json:"invite_sent_at,omitempty"`
	CandidateConfirmedAt *time.Time `json:"candidate_confirmation_timestamp"`
	NoShowFlag           bool       `json:"no_show_flag"`
	NoShowCount          int        `json:"no_show_count"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`

	Rating          *int           `json:"rating"`
	Feedback        string         `json:"feedback,omitempty"`
	Strengths       string         `json:"strengths,omitempty"`
	Improvements    string         `json:"improvements,omitempty"`
	Scorecard       map[string]int `json:"scorecard,omitempty"`
	DecisionType    DecisionType   `json:"decision_type,omitempty"`
	DecidedBy       string         `json:"decided_by,omitempty"`
	DecidedAt       *time.Time     `json:"decided_at,omitempty"`
	HiringInitiated bool           `json:"hiring_initiated"`
	SalaryOffered   string         `json:"salary_offered,omitempty"`
	JoiningDate     string         `json:"joining_date,omitempty"`
	OfferNotes      string         `json:"offer_notes,omitempty"`

	PreviousInterviewID string `json:"previous_interview_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`

	// Read-side enrichment joined from the job, candidate and client rows.
	CandidateName string `json:"candidate_name,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
}

// Slot returns the slot with the given id.
func (iv *Interview) Slot(id string) (*Slot, bool) {
	for i := range iv.Slots {
		if iv.Slots[i].ID == id {
			return &iv.Slots[i], true
		}
	}
	return nil, false
}

// HasSchedule reports whether a confirmed time is set.
func (iv *Interview) HasSchedule() bool {
	return iv.ScheduledStart != nil && iv.ScheduledEnd != nil
}

// Summary is the list-view projection of an Interview.
type Summary struct {
	ID             string     `json:"interview_id"`
	JobID          string     `json:"job_id"`
	CandidateID    string     `json:"candidate_id"`
	CandidateName  string     `json:"candidate_name,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Round          int        `json:"interview_round"`
	RoundName      string     `json:"round_name"`
	Mode           Mode       `json:"interview_mode"`
	Status         Status     `json:"interview_status"`
	ScheduledStart *time.Time `json:"scheduled_start_time"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Summarize projects iv for list responses.
func (iv *Interview) Summarize() Summary {
	return Summary{
		ID:             iv.ID,
		JobID:          iv.JobID,
		CandidateID:    iv.CandidateID,
		CandidateName:  iv.CandidateName,
		JobTitle:       iv.JobTitle,
		Round:          iv.Round,
		RoundName:      iv.RoundName,
		Mode:           iv.Mode,
		Status:         iv.Status,
		ScheduledStart: iv.ScheduledStart,
		CreatedAt:      iv.CreatedAt,
	}
}

// NewID returns prefix_ followed by n hex characters of a random uuid.
func NewID(prefix string, n int) string {
	hex := uuid.New().String()
	hex = hex[:8] + hex[9:13] + hex[14:18] + hex[19:23] + hex[24:]
	if n > len(hex) {
		n = len(hex)
	}
	return fmt.Sprintf("%s_%s", prefix, hex[:n])
}

// DefaultRoundName is used when the proposer leaves round_name empty.
func DefaultRoundName(round int) string {
	return fmt.Sprintf("Round %d", round)
}
