package interview

import (
	"strings"
	"time"

	"talent-scheduler/internal/apperr"
)

// SlotInput is a proposed window as sent by the recruiter.
type SlotInput struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// ValidateSlots checks a slot set: 1 to MaxSlots entries, every start
// strictly after now, no two with the same start, and ends after starts.
func ValidateSlots(slots []SlotInput, now time.Time) error {
	if len(slots) == 0 {
		return apperr.Invalid("at least one time slot is required")
	}
	if len(slots) > MaxSlots {
		return apperr.Invalid("at most %d time slots may be proposed", MaxSlots)
	}
	seen := make(map[int64]int, len(slots))
	for i, s := range slots {
		n := i + 1
		if s.StartTime.IsZero() {
			return apperr.Invalid("slot %d: start_time is required", n)
		}
		if !s.StartTime.After(now) {
			return apperr.Invalid("slot %d: start_time must be in the future", n)
		}
		if s.EndTime != nil && !s.EndTime.After(s.StartTime) {
			return apperr.Invalid("slot %d: end_time must be after start_time", n)
		}
		key := s.StartTime.UTC().UnixNano()
		if prev, dup := seen[key]; dup {
			return apperr.Invalid("slot %d has the same start_time as slot %d", n, prev)
		}
		seen[key] = n
	}
	return nil
}

// BuildSlots turns validated inputs into available slots. A missing end is
// start plus durationMinutes.
func BuildSlots(in []SlotInput, durationMinutes int) []Slot {
	out := make([]Slot, 0, len(in))
	for _, s := range in {
		start := s.StartTime.UTC()
		end := start.Add(time.Duration(durationMinutes) * time.Minute)
		if s.EndTime != nil {
			end = s.EndTime.UTC()
		}
		out = append(out, Slot{
			ID:              NewID("slot", 8),
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: durationMinutes,
			IsAvailable:     true,
		})
	}
	return out
}

// Proposal is the create-interview request.
type Proposal struct {
	JobID           string      `json:"job_id"`
	CandidateID     string      `json:"candidate_id"`
	Mode            Mode        `json:"interview_mode"`
	DurationMinutes int         `json:"interview_duration"`
	TimeZone        string      `json:"time_zone,omitempty"`
	Slots           []SlotInput `json:"proposed_slots"`
	MeetingLink     string      `json:"meeting_link,omitempty"`
	Instructions    string      `json:"additional_instructions,omitempty"`
	Round           int         `json:"interview_round,omitempty"`
	RoundName       string      `json:"round_name,omitempty"`
}

// Validate checks the proposal against now. It is run both by the recruiter
// adapter, before any request is issued, and by the service.
func (p Proposal) Validate(now time.Time) error {
	if strings.TrimSpace(p.JobID) == "" {
		return apperr.Invalid("job_id is required")
	}
	if strings.TrimSpace(p.CandidateID) == "" {
		return apperr.Invalid("candidate_id is required")
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return apperr.Invalid("interview_mode must be one of Video, Phone, Onsite")
	}
	if p.DurationMinutes < MinDuration || p.DurationMinutes > MaxDuration {
		return apperr.Invalid("interview_duration must be between %d and %d minutes", MinDuration, MaxDuration)
	}
	if p.Round < 0 || p.Round > MaxRound {
		return apperr.Invalid("interview_round must be between 1 and %d", MaxRound)
	}
	return ValidateSlots(p.Slots, now)
}

// New validates p and builds the interview in Awaiting Candidate Confirmation.
func New(p Proposal, clientID, createdBy string, now time.Time) (*Interview, error) {
	if err := p.Validate(now); err != nil {
		return nil, err
	}
	round := p.Round
	if round == 0 {
		round = 1
	}
	name := strings.TrimSpace(p.RoundName)
	if name == "" {
		name = DefaultRoundName(round)
	}
	tz := p.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	now = now.UTC()
	return &Interview{
		ID:              NewID("int", 12),
		JobID:           p.JobID,
		CandidateID:     p.CandidateID,
		ClientID:        clientID,
		Round:           round,
		RoundName:       name,
		Mode:            p.Mode,
		DurationMinutes: p.DurationMinutes,
		TimeZone:        tz,
		Slots:           BuildSlots(p.Slots, p.DurationMinutes),
		MeetingLink:     p.MeetingLink,
		Instructions:    p.Instructions,
		Status:          StatusAwaiting,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       createdBy,
	}, nil
}
