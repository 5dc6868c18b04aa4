package interview

import "time"

// HistoryRound is one line of a candidate's interview history.
type HistoryRound struct {
	InterviewID   string     `json:"interview_id"`
	Round         int        `json:"round"`
	RoundName     string     `json:"round_name"`
	Status        Status     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	Feedback      string     `json:"feedback,omitempty"`
	Rating        *int       `json:"rating"`
	Mode          Mode       `json:"interview_mode"`
}

// History is every round of one candidate, oldest first.
type History struct {
	CandidateID     string         `json:"candidate_id"`
	CandidateName   string         `json:"candidate_name"`
	CandidateStatus string         `json:"candidate_status"`
	TotalRounds     int            `json:"total_rounds"`
	CurrentRound    int            `json:"current_round"`
	Interviews      []HistoryRound `json:"interviews"`
}

// HistoryOf projects an interview onto its history line.
func HistoryOf(iv *Interview) HistoryRound {
	return HistoryRound{
		InterviewID:   iv.ID,
		Round:         iv.Round,
		RoundName:     iv.RoundName,
		Status:        iv.Status,
		ScheduledTime: iv.ScheduledStart,
		Feedback:      iv.Feedback,
		Rating:        iv.Rating,
		Mode:          iv.Mode,
	}
}
