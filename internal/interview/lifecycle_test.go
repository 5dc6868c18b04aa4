package interview_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/interview"
)

func newAwaiting(t *testing.T) *interview.Interview {
	t.Helper()
	iv, err := interview.New(proposal("2025-06-01T10:00:00Z", "2025-06-02T10:00:00Z"), "CL1", "rec@arbeit.io", now)
	require.NoError(t, err)
	return iv
}

func booked(t *testing.T) *interview.Interview {
	t.Helper()
	iv := newAwaiting(t)
	require.NoError(t, iv.Book(iv.Slots[0].ID, now))
	return iv
}

func TestBookConfirmsAndLocksEverySlot(t *testing.T) {
	iv := newAwaiting(t)
	first := iv.Slots[0]

	require.NoError(t, iv.Book(first.ID, now))

	assert.Equal(t, interview.StatusConfirmed, iv.Status)
	assert.Equal(t, first.ID, iv.SelectedSlotID)
	require.NotNil(t, iv.ScheduledStart)
	assert.True(t, iv.ScheduledStart.Equal(at("2025-06-01T10:00:00Z")))
	assert.True(t, iv.ScheduledEnd.Equal(at("2025-06-01T11:00:00Z")))
	assert.NotNil(t, iv.CandidateConfirmedAt)
	for _, s := range iv.Slots {
		assert.False(t, s.IsAvailable, s.ID)
	}
}

func TestSecondBookingConflicts(t *testing.T) {
	iv := booked(t)
	start := *iv.ScheduledStart

	err := iv.Book(iv.Slots[1].ID, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.True(t, iv.ScheduledStart.Equal(start), "first booking must win")
	assert.Equal(t, iv.Slots[0].ID, iv.SelectedSlotID)
}

func TestBookUnavailableSlotConflicts(t *testing.T) {
	iv := newAwaiting(t)
	iv.Slots[1].IsAvailable = false

	err := iv.Book(iv.Slots[1].ID, now)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, interview.StatusAwaiting, iv.Status)
}

func TestBookUnknownSlot(t *testing.T) {
	iv := newAwaiting(t)
	assert.ErrorIs(t, iv.Book("slot_missing", now), apperr.ErrNotFound)
}

func TestSendInvite(t *testing.T) {
	iv := booked(t)

	err := iv.MarkInviteSent(interview.InviteRequest{}, "rec@arbeit.io", now)
	assert.True(t, apperr.IsValidation(err))

	err = iv.MarkInviteSent(interview.InviteRequest{MeetingLink: "https://meet/x", AutoCreateCalendarEvent: true}, "rec@arbeit.io", now)
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, iv.MarkInviteSent(interview.InviteRequest{MeetingLink: "https://meet/x", DurationMinutes: 90}, "rec@arbeit.io", now))
	assert.True(t, iv.InviteSent)
	assert.Equal(t, interview.StatusScheduled, iv.Status)
	assert.Equal(t, "https://meet/x", iv.MeetingLink)
	assert.Equal(t, 90, iv.DurationMinutes)
	assert.True(t, iv.ScheduledEnd.Equal(at("2025-06-01T11:30:00Z")))

	err = iv.MarkInviteSent(interview.InviteRequest{MeetingLink: "https://meet/y"}, "rec@arbeit.io", now)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSendInviteRequiresConfirmed(t *testing.T) {
	iv := newAwaiting(t)
	err := iv.MarkInviteSent(interview.InviteRequest{AutoCreateCalendarEvent: true}, "rec@arbeit.io", now)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.False(t, iv.InviteSent)
}

func TestMarkCompletedAndNoShow(t *testing.T) {
	iv := booked(t)
	require.NoError(t, iv.MarkCompleted(now))
	assert.Equal(t, interview.StatusCompleted, iv.Status)

	iv = booked(t)
	require.NoError(t, iv.MarkNoShow(now))
	assert.Equal(t, interview.StatusNoShow, iv.Status)
	assert.True(t, iv.NoShowFlag)
	assert.Equal(t, 1, iv.NoShowCount)

	assert.ErrorIs(t, newAwaiting(t).MarkCompleted(now), apperr.ErrConflict)
}

func TestCancelRejectsClosedInterviews(t *testing.T) {
	closers := map[interview.Status]func(t *testing.T, iv *interview.Interview){
		interview.StatusCompleted: func(t *testing.T, iv *interview.Interview) { require.NoError(t, iv.MarkCompleted(now)) },
		interview.StatusNoShow:    func(t *testing.T, iv *interview.Interview) { require.NoError(t, iv.MarkNoShow(now)) },
		interview.StatusCancelled: func(t *testing.T, iv *interview.Interview) { require.NoError(t, iv.Cancel("", now)) },
		interview.StatusPassed: func(t *testing.T, iv *interview.Interview) {
			require.NoError(t, iv.MarkCompleted(now))
			_, err := iv.ApplyDecision(interview.Decision{Type: interview.DecisionPass, OverallRating: 4}, "rec", now)
			require.NoError(t, err)
		},
		interview.StatusFailed: func(t *testing.T, iv *interview.Interview) {
			require.NoError(t, iv.MarkCompleted(now))
			_, err := iv.ApplyDecision(interview.Decision{Type: interview.DecisionFail, OverallRating: 2}, "rec", now)
			require.NoError(t, err)
		},
	}
	for st, apply := range closers {
		t.Run(string(st), func(t *testing.T) {
			iv := booked(t)
			apply(t, iv)
			require.Equal(t, st, iv.Status)

			err := iv.Cancel("changed mind", now)
			assert.ErrorIs(t, err, apperr.ErrConflict)
			assert.Equal(t, st, iv.Status)
		})
	}
}

func TestCancelOpenInterview(t *testing.T) {
	iv := newAwaiting(t)
	require.NoError(t, iv.Cancel("role filled", now))
	assert.Equal(t, interview.StatusCancelled, iv.Status)
	assert.Equal(t, "role filled", iv.CancellationReason)
	assert.ErrorIs(t, iv.Book(iv.Slots[0].ID, now), apperr.ErrConflict)
}

func TestProposeSlotsOnlyWhileUnbooked(t *testing.T) {
	iv := newAwaiting(t)
	in := []interview.SlotInput{{StartTime: at("2025-06-10T10:00:00Z")}}
	require.NoError(t, iv.ProposeSlots(in, now))
	require.Len(t, iv.Slots, 1)

	require.NoError(t, iv.Book(iv.Slots[0].ID, now))
	assert.ErrorIs(t, iv.ProposeSlots(in, now), apperr.ErrConflict)
}

func TestUpdateDetailsLeavesStatusAlone(t *testing.T) {
	iv := booked(t)
	link := "https://meet/z"
	mode := interview.ModePhone
	require.NoError(t, iv.UpdateDetails(interview.DetailsUpdate{MeetingLink: &link, Mode: &mode}, now))
	assert.Equal(t, interview.StatusConfirmed, iv.Status)
	assert.Equal(t, link, iv.MeetingLink)
	assert.Equal(t, interview.ModePhone, iv.Mode)

	bad := interview.Mode("Hologram")
	assert.True(t, apperr.IsValidation(iv.UpdateDetails(interview.DetailsUpdate{Mode: &bad}, now)))
}
