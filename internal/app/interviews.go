package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/interview"
	"talent-scheduler/internal/metrics"
	"talent-scheduler/internal/notify"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	historyLimit     = 50
)

// transition is one state machine step applied under the row lock.
type transition struct {
	action      string
	perm        string
	auditAction string
	event       string
	apply       func(iv *interview.Interview, now time.Time) (*interview.Interview, error)
	meta        func(iv *interview.Interview) map[string]any
}

type outcome struct {
	Interview *interview.Interview
	Spawned   *interview.Interview
	From      interview.Status
}

func resultOf(err error) string {
	if err == nil {
		return "ok"
	}
	switch {
	case apperr.IsValidation(err):
		return "invalid"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrExpired):
		return "expired"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	}
	return "error"
}

// run authorises a staff session against the interview's client and applies t.
func (a *App) run(ctx context.Context, s Session, id string, t transition) (*outcome, error) {
	current, err := a.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.require(ctx, s, current.ClientID, t.perm, "interview", id); err != nil {
		return nil, err
	}
	return a.mutate(ctx, s.Actor(), id, t)
}

// mutate applies t once per in-flight action, then audits and publishes.
func (a *App) mutate(ctx context.Context, actor audit.Actor, id string, t transition) (*outcome, error) {
	release, ok, err := a.Locks.Acquire(ctx, lockKey(id, t.action), a.LockTTL)
	switch {
	case err != nil:
		a.Log.Warn("action lock unavailable, relying on row lock",
			zap.String("interview_id", id), zap.String("action", t.action), zap.Error(err))
	case !ok:
		metrics.Transition(t.action, "in_flight")
		return nil, apperr.Conflict("an identical request for this interview is already in progress")
	}
	defer release()

	now := a.now()
	var from interview.Status
	updated, spawned, err := a.Store.MutateInterview(ctx, id, func(iv *interview.Interview) (*interview.Interview, error) {
		from = iv.Status
		return t.apply(iv, now)
	})
	metrics.Transition(t.action, resultOf(err))
	if err != nil {
		return nil, err
	}

	e := audit.New(actor, t.auditAction, "interview", id, updated.ClientID, now)
	e.PreviousValue = map[string]any{"interview_status": from}
	e.NewValue = map[string]any{"interview_status": updated.Status}
	if t.meta != nil {
		e.Metadata = t.meta(updated)
	}
	a.appendAudit(ctx, e)

	if t.event != "" {
		a.publish(ctx, Event{
			Type:        t.event,
			InterviewID: id,
			CandidateID: updated.CandidateID,
			ClientID:    updated.ClientID,
			From:        from,
			To:          updated.Status,
			Actor:       actor.Email,
			At:          now,
		})
	}
	return &outcome{Interview: updated, Spawned: spawned, From: from}, nil
}

// CreateInterview validates p, checks the job/candidate pair and stores the
// interview in Awaiting Candidate Confirmation.
func (a *App) CreateInterview(ctx context.Context, s Session, p interview.Proposal) (*interview.Interview, error) {
	now := a.now()
	if err := p.Validate(now); err != nil {
		return nil, err
	}
	job, err := a.Store.GetJob(ctx, p.JobID)
	if err != nil {
		return nil, err
	}
	cand, err := a.Store.GetCandidate(ctx, p.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand.JobID != job.ID {
		return nil, apperr.Invalid("candidate does not belong to this job")
	}
	if err := a.require(ctx, s, job.ClientID, governance.UpdateCandidateStatus, "interview", ""); err != nil {
		return nil, err
	}

	iv, err := interview.New(p, job.ClientID, s.User.Email, now)
	if err != nil {
		return nil, err
	}
	if err := a.Store.CreateInterview(ctx, iv); err != nil {
		return nil, err
	}
	metrics.Transition("create", "ok")

	e := audit.New(s.Actor(), audit.InterviewCreate, "interview", iv.ID, iv.ClientID, now)
	e.NewValue = map[string]any{
		"interview_status": iv.Status,
		"interview_round":  iv.Round,
		"candidate_id":     iv.CandidateID,
		"slots":            len(iv.Slots),
	}
	a.appendAudit(ctx, e)
	a.publish(ctx, Event{Type: EventCreated, InterviewID: iv.ID, CandidateID: iv.CandidateID, ClientID: iv.ClientID,
		To: iv.Status, Actor: s.User.Email, At: now})

	return a.Store.GetInterview(ctx, iv.ID)
}

func bookTransition(slotID, via string, candidate bool) transition {
	return transition{
		action:      "book",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewSlotBooked,
		event:       EventBooked,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			if candidate && iv.Status != interview.StatusAwaiting {
				if iv.SelectedSlotID != "" {
					return nil, apperr.Conflict("slot is no longer available")
				}
				return nil, apperr.Expired("interview is no longer accepting bookings")
			}
			return nil, iv.Book(slotID, now)
		},
		meta: func(iv *interview.Interview) map[string]any {
			return map[string]any{"slot_id": slotID, "start_time": iv.ScheduledStart, "booked_via": via}
		},
	}
}

func (a *App) booked(out *outcome, err error, by string) (*interview.Interview, error) {
	if errors.Is(err, apperr.ErrConflict) {
		metrics.BookingConflict()
	}
	if err != nil {
		return nil, err
	}
	iv := out.Interview
	a.notify(context.Background(), notify.Booked(iv, by, a.now()))
	if strings.Contains(iv.CreatedBy, "@") {
		a.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			msg, err := notify.BookedEmail(iv.CreatedBy, notify.BookedData{
				CandidateName: iv.CandidateName,
				JobTitle:      iv.JobTitle,
				RoundName:     iv.RoundName,
				Start:         *iv.ScheduledStart,
				TimeZone:      iv.TimeZone,
				BookedBy:      by,
			})
			if err == nil {
				err = a.Mailer.Send(ctx, msg)
			}
			if err != nil {
				a.Log.Error("booking confirmation email failed", zap.String("interview_id", iv.ID), zap.Error(err))
			}
		})
	}
	return iv, nil
}

// BookSlot books on the candidate's behalf from the staff surface.
func (a *App) BookSlot(ctx context.Context, s Session, id, slotID string) (*interview.Interview, error) {
	if strings.TrimSpace(slotID) == "" {
		return nil, apperr.Invalid("slot_id is required")
	}
	out, err := a.run(ctx, s, id, bookTransition(slotID, "staff", false))
	return a.booked(out, err, s.User.Email)
}

// BookAsCandidate books from the candidate portal.
func (a *App) BookAsCandidate(ctx context.Context, s Session, id, slotID string) (*interview.Interview, error) {
	if strings.TrimSpace(slotID) == "" {
		return nil, apperr.Invalid("slot_id is required")
	}
	if _, err := a.CandidateInterview(ctx, s, id); err != nil {
		return nil, err
	}
	out, err := a.mutate(ctx, s.Actor(), id, bookTransition(slotID, "candidate_portal", true))
	return a.booked(out, err, s.Email)
}

// BookWithToken books through a public booking link.
func (a *App) BookWithToken(ctx context.Context, id, token, slotID string) (*interview.Interview, error) {
	if err := a.Auth.VerifyBookingToken(token, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(slotID) == "" {
		return nil, apperr.Invalid("slot_id is required")
	}
	out, err := a.mutate(ctx, audit.PublicBooker, id, bookTransition(slotID, "public_link", true))
	return a.booked(out, err, audit.PublicBooker.Email)
}

// SendInvite records the invitation and sends it in the background, after
// an optional calendar event supplied the meeting link.
func (a *App) SendInvite(ctx context.Context, s Session, id string, r interview.InviteRequest) (*interview.Interview, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out, err := a.run(ctx, s, id, transition{
		action:      "send_invite",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewInviteSent,
		event:       EventInviteSent,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.MarkInviteSent(r, s.User.Email, now)
		},
		meta: func(iv *interview.Interview) map[string]any {
			return map[string]any{"meeting_link": iv.MeetingLink, "auto_create_calendar_event": r.AutoCreateCalendarEvent}
		},
	})
	if err != nil {
		return nil, err
	}
	iv := out.Interview
	a.notify(ctx, notify.InviteSent(iv, s.User.Email, a.now()))
	a.background(func() { a.deliverInvite(context.Background(), iv.ID, r.AutoCreateCalendarEvent, s.User.Email) })
	return iv, nil
}

func (a *App) deliverInvite(ctx context.Context, id string, withCalendar bool, sender string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	log := a.Log.With(zap.String("interview_id", id))

	iv, err := a.Store.GetInterview(ctx, id)
	if err != nil {
		log.Error("load interview for invite failed", zap.Error(err))
		return
	}
	cand, err := a.Store.GetCandidate(ctx, iv.CandidateID)
	if err != nil {
		log.Error("load candidate for invite failed", zap.Error(err))
		return
	}

	if withCalendar {
		if a.Calendar == nil {
			log.Warn("calendar event requested but Google Calendar is not configured")
		} else if ev, err := a.Calendar.CreateEvent(ctx, EventRequest{
			InterviewID:   iv.ID,
			Summary:       fmt.Sprintf("Interview: %s - %s", iv.CandidateName, iv.JobTitle),
			Description:   fmt.Sprintf("%s (%s)\n%s", iv.RoundName, iv.Mode, iv.Instructions),
			Start:         *iv.ScheduledStart,
			End:           *iv.ScheduledEnd,
			TimeZone:      iv.TimeZone,
			AttendeeEmail: cand.Email,
		}); err != nil {
			log.Error("create calendar event failed", zap.Error(err))
		} else {
			updated, _, err := a.Store.MutateInterview(ctx, id, func(x *interview.Interview) (*interview.Interview, error) {
				x.AttachCalendarEvent(ev.EventID, ev.MeetingLink, ev.CalendarLink, a.now())
				return nil, nil
			})
			if err != nil {
				log.Error("store calendar event failed", zap.Error(err))
			} else {
				iv = updated
			}
		}
	}

	if cand.Email == "" {
		log.Warn("candidate has no email, invite not sent")
		return
	}
	msg, err := notify.InviteEmail(cand.Email, notify.InviteData{
		CandidateName:  iv.CandidateName,
		JobTitle:       iv.JobTitle,
		CompanyName:    iv.CompanyName,
		RoundName:      iv.RoundName,
		Mode:           string(iv.Mode),
		Start:          *iv.ScheduledStart,
		TimeZone:       iv.TimeZone,
		Duration:       iv.DurationMinutes,
		MeetingLink:    iv.MeetingLink,
		Instructions:   iv.Instructions,
		RecruiterEmail: sender,
	})
	if err == nil {
		err = a.Mailer.Send(ctx, msg)
	}
	if err != nil {
		log.Error("send invite email failed", zap.Error(err))
		return
	}
	log.Info("invite email sent", zap.String("to", cand.Email))
}

func (a *App) MarkCompleted(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	out, err := a.run(ctx, s, id, transition{
		action:      "complete",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewCompleted,
		event:       EventCompleted,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.MarkCompleted(now)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.Interview, nil
}

func (a *App) MarkNoShow(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	out, err := a.run(ctx, s, id, transition{
		action:      "no_show",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewNoShow,
		event:       EventNoShow,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.MarkNoShow(now)
		},
		meta: func(iv *interview.Interview) map[string]any {
			return map[string]any{"no_show_count": iv.NoShowCount}
		},
	})
	if err != nil {
		return nil, err
	}
	a.notify(ctx, notify.NoShow(out.Interview, s.User.Email, a.now()))
	return out.Interview, nil
}

func (a *App) Cancel(ctx context.Context, s Session, id, reason string) (*interview.Interview, error) {
	out, err := a.run(ctx, s, id, transition{
		action:      "cancel",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewCancelled,
		event:       EventCancelled,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.Cancel(strings.TrimSpace(reason), now)
		},
		meta: func(iv *interview.Interview) map[string]any {
			return map[string]any{"reason": iv.CancellationReason}
		},
	})
	if err != nil {
		return nil, err
	}
	return out.Interview, nil
}

var decisionActions = map[interview.DecisionType]struct{ audit, event string }{
	interview.DecisionPass: {audit.InterviewPassed, EventPassed},
	interview.DecisionFail: {audit.InterviewFailed, EventFailed},
	interview.DecisionHire: {audit.HiringInitiated, EventHiring},
}

// Decide records a pass, fail or hire decision. A pass returns the spawned
// next round as outcome.Spawned.
func (a *App) Decide(ctx context.Context, s Session, id string, d interview.Decision) (*outcome, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	acts := decisionActions[d.Type]
	var nextID string
	out, err := a.run(ctx, s, id, transition{
		action:      "decide",
		perm:        governance.UpdateCandidateStatus,
		auditAction: acts.audit,
		event:       acts.event,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			spawn, err := iv.ApplyDecision(d, s.User.Email, now)
			if spawn != nil {
				nextID = spawn.ID
			}
			return spawn, err
		},
		meta: func(iv *interview.Interview) map[string]any {
			m := map[string]any{"decision_type": d.Type, "rating": d.OverallRating}
			if nextID != "" {
				m["next_interview_id"] = nextID
			}
			if d.Type == interview.DecisionHire {
				m["salary_offered"] = d.SalaryOffered
				m["joining_date"] = d.JoiningDate
			}
			return m
		},
	})
	if err != nil {
		return nil, err
	}

	round := out.Interview.Round
	if out.Spawned != nil {
		round = out.Spawned.Round
	}
	if err := a.Store.UpdateCandidateStatus(ctx, out.Interview.CandidateID, d.CandidateStatus(), round); err != nil {
		a.Log.Warn("update candidate status failed",
			zap.String("candidate_id", out.Interview.CandidateID), zap.Error(err))
	}
	a.notify(ctx, notify.Decided(out.Interview, out.Spawned, s.User.Email, a.now()))
	return out, nil
}

// ProposeSlots replaces the slots of an unbooked interview.
func (a *App) ProposeSlots(ctx context.Context, s Session, id string, slots []interview.SlotInput) (*interview.Interview, error) {
	if err := interview.ValidateSlots(slots, a.now()); err != nil {
		return nil, err
	}
	out, err := a.run(ctx, s, id, transition{
		action:      "propose_slots",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewSlots,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.ProposeSlots(slots, now)
		},
		meta: func(iv *interview.Interview) map[string]any {
			return map[string]any{"slots": len(iv.Slots)}
		},
	})
	if err != nil {
		return nil, err
	}
	return out.Interview, nil
}

// UpdateDetails edits the descriptive fields. Status never changes here.
func (a *App) UpdateDetails(ctx context.Context, s Session, id string, u interview.DetailsUpdate) (*interview.Interview, error) {
	out, err := a.run(ctx, s, id, transition{
		action:      "update",
		perm:        governance.UpdateCandidateStatus,
		auditAction: audit.InterviewUpdate,
		apply: func(iv *interview.Interview, now time.Time) (*interview.Interview, error) {
			return nil, iv.UpdateDetails(u, now)
		},
	})
	if err != nil {
		return nil, err
	}
	return out.Interview, nil
}

// GetInterview returns an interview visible to s.
func (a *App) GetInterview(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	iv, err := a.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.require(ctx, s, iv.ClientID, governance.ViewCandidates, "interview", id); err != nil {
		return nil, err
	}
	return iv, nil
}

// ListInterviews scopes client users to their own client.
func (a *App) ListInterviews(ctx context.Context, s Session, q InterviewQuery) ([]interview.Summary, error) {
	if !governance.IsInternal(s.User.Role) {
		if err := a.require(ctx, s, s.User.ClientID, governance.ViewCandidates, "interview", ""); err != nil {
			return nil, err
		}
		q.ClientID = s.User.ClientID
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	ivs, err := a.Store.ListInterviews(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]interview.Summary, 0, len(ivs))
	for i := range ivs {
		out = append(out, ivs[i].Summarize())
	}
	return out, nil
}

func (a *App) candidateScope(ctx context.Context, s Session, candidateID string) (*Candidate, *Job, error) {
	cand, err := a.Store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}
	job, err := a.Store.GetJob(ctx, cand.JobID)
	if err != nil {
		return nil, nil, err
	}
	if err := a.require(ctx, s, job.ClientID, governance.ViewCandidates, "candidate", candidateID); err != nil {
		return nil, nil, err
	}
	return cand, job, nil
}

func (a *App) CandidateHistory(ctx context.Context, s Session, candidateID string) (*interview.History, error) {
	cand, _, err := a.candidateScope(ctx, s, candidateID)
	if err != nil {
		return nil, err
	}
	ivs, err := a.Store.ListInterviews(ctx, InterviewQuery{CandidateID: candidateID, Limit: historyLimit})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].Round != ivs[j].Round {
			return ivs[i].Round < ivs[j].Round
		}
		return ivs[i].CreatedAt.Before(ivs[j].CreatedAt)
	})

	h := &interview.History{
		CandidateID:     cand.ID,
		CandidateName:   cand.Name,
		CandidateStatus: cand.Status,
		TotalRounds:     len(ivs),
		CurrentRound:    cand.CurrentRound,
		Interviews:      make([]interview.HistoryRound, 0, len(ivs)),
	}
	for i := range ivs {
		h.Interviews = append(h.Interviews, interview.HistoryOf(&ivs[i]))
	}
	return h, nil
}

func (a *App) CandidateInterviews(ctx context.Context, s Session, candidateID string) ([]interview.Summary, error) {
	if _, _, err := a.candidateScope(ctx, s, candidateID); err != nil {
		return nil, err
	}
	ivs, err := a.Store.ListInterviews(ctx, InterviewQuery{CandidateID: candidateID, Limit: defaultListLimit})
	if err != nil {
		return nil, err
	}
	out := make([]interview.Summary, 0, len(ivs))
	for i := range ivs {
		out = append(out, ivs[i].Summarize())
	}
	return out, nil
}

// PipelineStats counts interviews by status.
type PipelineStats struct {
	Total     int `json:"total_interviews"`
	Awaiting  int `json:"awaiting_confirmation"`
	Confirmed int `json:"confirmed"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	NoShows   int `json:"no_shows"`
	Cancelled int `json:"cancelled"`
}

func (a *App) Pipeline(ctx context.Context, s Session, clientID string) (*PipelineStats, error) {
	if !governance.IsInternal(s.User.Role) {
		if err := a.require(ctx, s, s.User.ClientID, governance.ViewCandidates, "interview", ""); err != nil {
			return nil, err
		}
		clientID = s.User.ClientID
	}
	counts, err := a.Store.CountByStatus(ctx, clientID)
	if err != nil {
		return nil, err
	}
	st := &PipelineStats{
		Awaiting:  counts[interview.StatusAwaiting],
		Confirmed: counts[interview.StatusConfirmed],
		Scheduled: counts[interview.StatusScheduled],
		Completed: counts[interview.StatusCompleted],
		Passed:    counts[interview.StatusPassed],
		Failed:    counts[interview.StatusFailed],
		NoShows:   counts[interview.StatusNoShow],
		Cancelled: counts[interview.StatusCancelled],
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

// BookingLink is a shareable link that lets the candidate book without a
// portal account.
type BookingLink struct {
	InterviewID  string    `json:"interview_id"`
	BookingLink  string    `json:"booking_link"`
	BookingToken string    `json:"booking_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (a *App) BookingLink(ctx context.Context, s Session, id string) (*BookingLink, error) {
	iv, err := a.GetInterview(ctx, s, id)
	if err != nil {
		return nil, err
	}
	tok, exp, err := a.Auth.IssueBookingToken(iv.ID)
	if err != nil {
		return nil, fmt.Errorf("issue booking token: %w", err)
	}
	return &BookingLink{
		InterviewID:  iv.ID,
		BookingLink:  fmt.Sprintf("%s/book/%s/%s", a.FrontendURL, iv.ID, tok),
		BookingToken: tok,
		ExpiresAt:    exp,
	}, nil
}

// CandidateInterview returns id if it belongs to the portal user s.
func (a *App) CandidateInterview(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	iv, err := a.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	cands, err := a.Store.CandidatesForPortal(ctx, s.PortalID, s.Email)
	if err != nil {
		return nil, err
	}
	for _, c := range cands {
		if c.ID == iv.CandidateID {
			return iv, nil
		}
	}
	return nil, apperr.Forbidden("this interview does not belong to you")
}

// MyInterviews lists every interview of the portal user's candidate records.
func (a *App) MyInterviews(ctx context.Context, s Session) ([]interview.Interview, error) {
	cands, err := a.Store.CandidatesForPortal(ctx, s.PortalID, s.Email)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return []interview.Interview{}, nil
	}
	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID)
	}
	return a.Store.ListInterviews(ctx, InterviewQuery{CandidateIDs: ids, Limit: defaultListLimit})
}

// PublicInterview is what a booking-link holder may see.
type PublicInterview struct {
	ID              string           `json:"interview_id"`
	Mode            interview.Mode   `json:"interview_mode"`
	DurationMinutes int              `json:"interview_duration"`
	TimeZone        string           `json:"time_zone"`
	Status          interview.Status `json:"interview_status"`
	Round           int              `json:"interview_round"`
	RoundName       string           `json:"round_name"`
	Slots           []interview.Slot `json:"proposed_slots"`
	ScheduledStart  *time.Time       `json:"scheduled_start_time"`
	ScheduledEnd    *time.Time       `json:"scheduled_end_time"`
	MeetingLink     string           `json:"meeting_link,omitempty"`
	Instructions    string           `json:"additional_instructions,omitempty"`
	CandidateName   string           `json:"candidate_name,omitempty"`
	JobTitle        string           `json:"job_title,omitempty"`
	CompanyName     string           `json:"company_name,omitempty"`
}

func (a *App) PublicInterview(ctx context.Context, id, token string) (*PublicInterview, error) {
	if err := a.Auth.VerifyBookingToken(token, id); err != nil {
		return nil, err
	}
	iv, err := a.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicInterview{
		ID:              iv.ID,
		Mode:            iv.Mode,
		DurationMinutes: iv.DurationMinutes,
		TimeZone:        iv.TimeZone,
		Status:          iv.Status,
		Round:           iv.Round,
		RoundName:       iv.RoundName,
		Slots:           iv.Slots,
		ScheduledStart:  iv.ScheduledStart,
		ScheduledEnd:    iv.ScheduledEnd,
		MeetingLink:     iv.MeetingLink,
		Instructions:    iv.Instructions,
		CandidateName:   iv.CandidateName,
		JobTitle:        iv.JobTitle,
		CompanyName:     iv.CompanyName,
	}, nil
}
