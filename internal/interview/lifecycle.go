package interview

import (
	"time"

	"talent-scheduler/internal/apperr"
)

func (iv *Interview) moveTo(to Status, action string, now time.Time) error {
	if !IsTransitionAllowed(iv.Status, to) {
		return apperr.Conflict("cannot %s an interview in status %s", action, iv.Status)
	}
	iv.Status = to
	iv.UpdatedAt = now.UTC()
	return nil
}

// Book confirms slotID. The first booking wins: every slot loses its
// availability so a second attempt on any slot is a conflict.
func (iv *Interview) Book(slotID string, now time.Time) error {
	if iv.Status != StatusAwaiting {
		return apperr.Conflict("interview is not awaiting confirmation (current status: %s)", iv.Status)
	}
	slot, ok := iv.Slot(slotID)
	if !ok {
		return apperr.NotFound("slot")
	}
	if !slot.IsAvailable {
		return apperr.Conflict("slot is no longer available")
	}
	start, end := slot.StartTime, slot.EndTime
	for i := range iv.Slots {
		iv.Slots[i].IsAvailable = false
	}
	now = now.UTC()
	iv.SelectedSlotID = slotID
	iv.ScheduledStart = &start
	iv.ScheduledEnd = &end
	iv.CandidateConfirmedAt = &now
	return iv.moveTo(StatusConfirmed, "book", now)
}

// ProposeSlots replaces the proposed slots of an unbooked interview. Spawned
// rounds start without slots and get them here.
func (iv *Interview) ProposeSlots(in []SlotInput, now time.Time) error {
	if iv.Status != StatusAwaiting || iv.SelectedSlotID != "" {
		return apperr.Conflict("slots can only be proposed while awaiting confirmation (current status: %s)", iv.Status)
	}
	if err := ValidateSlots(in, now); err != nil {
		return err
	}
	iv.Slots = BuildSlots(in, iv.DurationMinutes)
	iv.UpdatedAt = now.UTC()
	return nil
}

// InviteRequest carries the send-invite options. Exactly one of MeetingLink
// and AutoCreateCalendarEvent must be set.
type InviteRequest struct {
	MeetingLink             string `json:"meeting_link,omitempty"`
	Mode                    Mode   `json:"interview_mode,omitempty"`
	DurationMinutes         int    `json:"duration_minutes,omitempty"`
	TimeZone                string `json:"time_zone,omitempty"`
	AutoCreateCalendarEvent bool   `json:"auto_create_calendar_event"`
}

// Validate enforces the meeting link / calendar exclusivity and the optional
// overrides.
func (r InviteRequest) Validate() error {
	hasLink := r.MeetingLink != ""
	if hasLink == r.AutoCreateCalendarEvent {
		return apperr.Invalid("provide either a meeting link or auto_create_calendar_event, not both or neither")
	}
	if r.Mode != "" {
		if _, err := ParseMode(string(r.Mode)); err != nil {
			return apperr.Invalid("interview_mode must be one of Video, Phone, Onsite")
		}
	}
	if r.DurationMinutes != 0 && (r.DurationMinutes < MinDuration || r.DurationMinutes > MaxDuration) {
		return apperr.Invalid("duration_minutes must be between %d and %d", MinDuration, MaxDuration)
	}
	return nil
}

// MarkInviteSent records the invitation and moves Confirmed to Scheduled.
func (iv *Interview) MarkInviteSent(r InviteRequest, sentBy string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if iv.InviteSent {
		return apperr.Conflict("invite already sent")
	}
	if err := iv.moveTo(StatusScheduled, "send an invite for", now); err != nil {
		return err
	}
	if r.Mode != "" {
		iv.Mode = r.Mode
	}
	if r.TimeZone != "" {
		iv.TimeZone = r.TimeZone
	}
	if r.DurationMinutes != 0 && r.DurationMinutes != iv.DurationMinutes {
		iv.DurationMinutes = r.DurationMinutes
		if iv.ScheduledStart != nil {
			end := iv.ScheduledStart.Add(time.Duration(r.DurationMinutes) * time.Minute)
			iv.ScheduledEnd = &end
		}
	}
	if r.MeetingLink != "" {
		iv.MeetingLink = r.MeetingLink
	}
	sentAt := now.UTC()
	iv.InviteSent = true
	iv.InviteSentBy = sentBy
	iv.InviteSentAt = &sentAt
	return nil
}

// AttachCalendarEvent stores the result of the asynchronous calendar call.
func (iv *Interview) AttachCalendarEvent(eventID, meetingLink, calendarLink string, now time.Time) {
	iv.CalendarEventID = eventID
	iv.CalendarLink = calendarLink
	if meetingLink != "" {
		iv.MeetingLink = meetingLink
	}
	iv.UpdatedAt = now.UTC()
}

// MarkCompleted closes a held interview.
func (iv *Interview) MarkCompleted(now time.Time) error {
	if !iv.HasSchedule() {
		return apperr.Conflict("interview has no scheduled time")
	}
	return iv.moveTo(StatusCompleted, "complete", now)
}

// MarkNoShow records that the candidate did not attend.
func (iv *Interview) MarkNoShow(now time.Time) error {
	if !iv.HasSchedule() {
		return apperr.Conflict("interview has no scheduled time")
	}
	if err := iv.moveTo(StatusNoShow, "mark no-show on", now); err != nil {
		return err
	}
	iv.NoShowFlag = true
	iv.NoShowCount++
	return nil
}

// Cancel ends an interview that has not been held or decided.
func (iv *Interview) Cancel(reason string, now time.Time) error {
	if IsClosed(iv.Status) {
		return apperr.Conflict("cannot cancel an interview in status %s", iv.Status)
	}
	iv.Status = StatusCancelled
	iv.CancellationReason = reason
	iv.UpdatedAt = now.UTC()
	return nil
}

// DetailsUpdate holds the fields staff may edit in place. Status is not part
// of it; status only moves through the transition methods.
type DetailsUpdate struct {
	Mode         *Mode   `json:"interview_mode,omitempty"`
	MeetingLink  *string `json:"meeting_link,omitempty"`
	Instructions *string `json:"additional_instructions,omitempty"`
	RoundName    *string `json:"round_name,omitempty"`
	TimeZone     *string `json:"time_zone,omitempty"`
}

// UpdateDetails applies u to an interview that is still open.
func (iv *Interview) UpdateDetails(u DetailsUpdate, now time.Time) error {
	if IsTerminal(iv.Status) {
		return apperr.Conflict("cannot edit an interview in status %s", iv.Status)
	}
	if u.Mode != nil {
		if _, err := ParseMode(string(*u.Mode)); err != nil {
			return apperr.Invalid("interview_mode must be one of Video, Phone, Onsite")
		}
		iv.Mode = *u.Mode
	}
	if u.MeetingLink != nil {
		iv.MeetingLink = *u.MeetingLink
	}
	if u.Instructions != nil {
		iv.Instructions = *u.Instructions
	}
	if u.RoundName != nil && *u.RoundName != "" {
		iv.RoundName = *u.RoundName
	}
	if u.TimeZone != nil && *u.TimeZone != "" {
		iv.TimeZone = *u.TimeZone
	}
	iv.UpdatedAt = now.UTC()
	return nil
}
