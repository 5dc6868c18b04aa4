package interview

import (
	"strings"
	"time"

	"talent-scheduler/internal/apperr"
)

// DecisionType is the recruiter's verdict after an interview.
type DecisionType string

const (
	DecisionPass DecisionType = "pass"
	DecisionFail DecisionType = "fail"
	DecisionHire DecisionType = "hire"
)

// ScorecardKeys is the closed set of scorecard categories.
var ScorecardKeys = []string{
	"technical_skills",
	"problem_solving",
	"communication",
	"cultural_fit",
	"experience_relevance",
}

// Candidate statuses written by decisions.
const (
	CandidateInProgress = "IN_PROGRESS"
	CandidateRejected   = "REJECTED"
	CandidateSelected   = "SELECTED"
)

// Decision is the body of the move-to-next-round, reject and
// initiate-hiring calls.
type Decision struct {
	Type          DecisionType   `json:"decision_type"`
	Scorecard     map[string]int `json:"scorecard,omitempty"`
	OverallRating int            `json:"rating"`
	Feedback      string         `json:"feedback,omitempty"`
	Strengths     string         `json:"strengths,omitempty"`
	Improvements  string         `json:"improvements,omitempty"`

	SalaryOffered string `json:"salary_offered,omitempty"`
	JoiningDate   string `json:"joining_date,omitempty"`
	OfferNotes    string `json:"offer_notes,omitempty"`

	NextRoundName  string      `json:"next_round_name,omitempty"`
	NextRoundSlots []SlotInput `json:"next_round_slots,omitempty"`
}

// Validate runs the rating gate before anything else, so an unset rating
// is rejected whatever the decision type.
func (d Decision) Validate() error {
	if d.OverallRating < 1 || d.OverallRating > 5 {
		return apperr.Invalid("an overall rating between 1 and 5 is required")
	}
	switch d.Type {
	case DecisionPass, DecisionFail, DecisionHire:
	default:
		return apperr.Invalid("decision_type must be one of pass, fail, hire")
	}
	for k, v := range d.Scorecard {
		if !isScorecardKey(k) {
			return apperr.Invalid("unknown scorecard category %q", k)
		}
		if v < 0 || v > 5 {
			return apperr.Invalid("scorecard %s must be between 0 and 5", k)
		}
	}
	if d.Type == DecisionHire {
		if strings.TrimSpace(d.SalaryOffered) == "" || strings.TrimSpace(d.JoiningDate) == "" {
			return apperr.Invalid("salary_offered and joining_date are required to initiate hiring")
		}
	}
	return nil
}

func isScorecardKey(k string) bool {
	for _, s := range ScorecardKeys {
		if s == k {
			return true
		}
	}
	return false
}

// CandidateStatus is the status the candidate record takes after d.
func (d Decision) CandidateStatus() string {
	switch d.Type {
	case DecisionFail:
		return CandidateRejected
	case DecisionHire:
		return CandidateSelected
	}
	return CandidateInProgress
}

// ApplyDecision records d on a Completed or Scheduled interview. A pass
// returns the spawned next-round interview, which the caller must persist in
// the same unit of work.
func (iv *Interview) ApplyDecision(d Decision, decidedBy string, now time.Time) (*Interview, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if iv.Status != StatusCompleted && iv.Status != StatusScheduled {
		return nil, apperr.Conflict("a decision needs a Completed or Scheduled interview (current status: %s)", iv.Status)
	}
	if d.Type == DecisionPass {
		if iv.Round >= MaxRound {
			return nil, apperr.Invalid("round %d is the last allowed round", MaxRound)
		}
		if len(d.NextRoundSlots) > 0 {
			if err := ValidateSlots(d.NextRoundSlots, now); err != nil {
				return nil, err
			}
		}
	}

	to := StatusPassed
	if d.Type == DecisionFail {
		to = StatusFailed
	}
	if err := iv.moveTo(to, "record a decision on", now); err != nil {
		return nil, err
	}

	rating := d.OverallRating
	decidedAt := now.UTC()
	iv.Rating = &rating
	iv.Feedback = d.Feedback
	iv.Strengths = d.Strengths
	iv.Improvements = d.Improvements
	iv.Scorecard = d.Scorecard
	iv.DecisionType = d.Type
	iv.DecidedBy = decidedBy
	iv.DecidedAt = &decidedAt

	switch d.Type {
	case DecisionHire:
		iv.HiringInitiated = true
		iv.SalaryOffered = d.SalaryOffered
		iv.JoiningDate = d.JoiningDate
		iv.OfferNotes = d.OfferNotes
	case DecisionPass:
		return iv.nextRound(d, decidedBy, decidedAt), nil
	}
	return nil, nil
}

// nextRound builds the follow-up round. Without next-round slots it is the one
// Awaiting interview allowed to hold no slots; it cannot be booked until
// propose-slots fills it.
func (iv *Interview) nextRound(d Decision, createdBy string, now time.Time) *Interview {
	round := iv.Round + 1
	name := strings.TrimSpace(d.NextRoundName)
	if name == "" {
		name = DefaultRoundName(round)
	}
	slots := []Slot{}
	if len(d.NextRoundSlots) > 0 {
		slots = BuildSlots(d.NextRoundSlots, iv.DurationMinutes)
	}
	return &Interview{
		ID:                  NewID("int", 12),
		JobID:               iv.JobID,
		CandidateID:         iv.CandidateID,
		ClientID:            iv.ClientID,
		Round:               round,
		RoundName:           name,
		Mode:                iv.Mode,
		DurationMinutes:     iv.DurationMinutes,
		TimeZone:            iv.TimeZone,
		Slots:               slots,
		Status:              StatusAwaiting,
		PreviousInterviewID: iv.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           createdBy,
	}
}
