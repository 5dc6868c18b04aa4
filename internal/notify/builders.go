package notify

import (
	"fmt"
	"time"

	"talent-scheduler/internal/interview"
)

// Booked is raised when a candidate confirms a slot.
func Booked(iv *interview.Interview, by string, now time.Time) Notification {
	when := "TBD"
	if iv.ScheduledStart != nil {
		when = iv.ScheduledStart.Format(time.RFC3339)
	}
	return ForInterview(TypeInterviewBooked,
		fmt.Sprintf("Interview Confirmed: %s - %s", displayName(iv.CandidateName, "Candidate"), iv.RoundName),
		fmt.Sprintf("Slot booked for %s", when),
		iv, by, now)
}

// InviteSent is raised after the invitation email went out.
func InviteSent(iv *interview.Interview, by string, now time.Time) Notification {
	return ForInterview(TypeInviteSent,
		fmt.Sprintf("Invite Sent: %s - %s", displayName(iv.CandidateName, "Candidate"), iv.RoundName),
		fmt.Sprintf("Invitation sent by %s", by),
		iv, by, now)
}

// InvitePending reminds staff that a confirmed interview is near and the
// candidate has no invitation yet.
func InvitePending(iv *interview.Interview, now time.Time) Notification {
	return ForInterview(TypeInvitePending,
		fmt.Sprintf("Invite Pending: %s - %s", displayName(iv.CandidateName, "Candidate"), iv.RoundName),
		fmt.Sprintf("Interview starts at %s and no invite has been sent", iv.ScheduledStart.Format(time.RFC3339)),
		iv, "system", now)
}

// NoShow is raised when the candidate missed the interview.
func NoShow(iv *interview.Interview, by string, now time.Time) Notification {
	return ForInterview(TypeNoShow,
		fmt.Sprintf("No Show: %s - %s", displayName(iv.CandidateName, "Candidate"), iv.RoundName),
		fmt.Sprintf("No-show count is now %d", iv.NoShowCount),
		iv, by, now)
}

// Decided is raised for pass, fail and hire decisions.
func Decided(iv *interview.Interview, next *interview.Interview, by string, now time.Time) Notification {
	name := displayName(iv.CandidateName, "Candidate")
	switch {
	case iv.HiringInitiated:
		n := ForInterview(TypeHiring,
			fmt.Sprintf("Hiring Initiated: %s", name),
			fmt.Sprintf("Selected for %s after %d round(s)", displayName(iv.JobTitle, "Position"), iv.Round),
			iv, by, now)
		n.EntityType, n.EntityID = "candidate", iv.CandidateID
		return n
	case iv.Status == interview.StatusFailed:
		return ForInterview(TypeInterviewFailed,
			fmt.Sprintf("Interview Failed: %s - Round %d", name, iv.Round),
			"Candidate rejected", iv, by, now)
	}
	msg := fmt.Sprintf("Ready for Round %d.", iv.Round+1)
	if next != nil {
		msg = fmt.Sprintf("Ready for %s.", next.RoundName)
	}
	return ForInterview(TypeInterviewPassed,
		fmt.Sprintf("Interview Passed: %s - Round %d", name, iv.Round),
		msg, iv, by, now)
}
