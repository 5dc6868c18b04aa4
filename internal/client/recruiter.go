package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/interview"
)

// Recruiter drives the staff side of the scheduling flow.
type Recruiter struct {
	c     *Client
	group singleflight.Group
	Now   func() time.Time
}

func NewRecruiter(c *Client) *Recruiter {
	return &Recruiter{c: c, Now: time.Now}
}

// BookingLink is the shareable link for candidates without a portal account.
type BookingLink struct {
	InterviewID  string    `json:"interview_id"`
	BookingLink  string    `json:"booking_link"`
	BookingToken string    `json:"booking_token"`
	ExpiresAt    time.Time `json:"expires_at"`
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

// ListQuery filters List. Zero values are omitted.
type ListQuery struct {
	JobID       string
	CandidateID string
	Status      interview.Status
	Skip        int
	Limit       int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.JobID != "" {
		v.Set("job_id", q.JobID)
	}
	if q.CandidateID != "" {
		v.Set("candidate_id", q.CandidateID)
	}
	if q.Status != "" {
		v.Set("status_filter", string(q.Status))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// once collapses identical in-flight actions on one interview and returns
// the canonical record once the action went through.
func (r *Recruiter) once(ctx context.Context, s Session, action, id string, call func() error) (*interview.Interview, error) {
	v, err, _ := r.group.Do(action+":"+id, func() (any, error) {
		if err := call(); err != nil {
			return nil, err
		}
		return r.Get(ctx, s, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*interview.Interview), nil
}

func (r *Recruiter) post(ctx context.Context, s Session, action, id string, body any) (*interview.Interview, error) {
	return r.once(ctx, s, action, id, func() error {
		return r.c.do(ctx, http.MethodPost, "/interviews/"+escape(id)+"/"+action, s.Token, nil, body, nil)
	})
}

// ProposeSlots creates an interview in Awaiting Candidate Confirmation.
// Invalid proposals fail before any request is made.
func (r *Recruiter) ProposeSlots(ctx context.Context, s Session, p interview.Proposal) (*interview.Interview, error) {
	if err := p.Validate(r.Now()); err != nil {
		return nil, err
	}
	var created interview.Interview
	if err := r.c.do(ctx, http.MethodPost, "/interviews", s.Token, nil, p, &created); err != nil {
		return nil, err
	}
	return r.Get(ctx, s, created.ID)
}

// ProposeNextRoundSlots fills the slots of an Awaiting interview that has
// none yet, typically a round spawned by a pass decision.
func (r *Recruiter) ProposeNextRoundSlots(ctx context.Context, s Session, id string, slots []interview.SlotInput) (*interview.Interview, error) {
	if err := interview.ValidateSlots(slots, r.Now()); err != nil {
		return nil, err
	}
	return r.post(ctx, s, "propose-slots", id, map[string]any{"proposed_slots": slots})
}

// BookOnBehalf books slotID for the candidate.
func (r *Recruiter) BookOnBehalf(ctx context.Context, s Session, id, slotID string) (*interview.Interview, error) {
	if slotID == "" {
		return nil, apperr.Invalid("slot_id is required")
	}
	return r.post(ctx, s, "book-slot", id, map[string]any{"slot_id": slotID, "confirmed": true})
}

// SendInvite requires exactly one of a meeting link and calendar creation.
func (r *Recruiter) SendInvite(ctx context.Context, s Session, id string, req interview.InviteRequest) (*interview.Interview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.post(ctx, s, "send-invite", id, req)
}

func (r *Recruiter) MarkCompleted(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	return r.post(ctx, s, "mark-completed", id, nil)
}

func (r *Recruiter) MarkNoShow(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	return r.post(ctx, s, "mark-no-show", id, nil)
}

func (r *Recruiter) Cancel(ctx context.Context, s Session, id, reason string) (*interview.Interview, error) {
	return r.post(ctx, s, "cancel", id, map[string]any{"reason": reason})
}

var decisionPaths = map[interview.DecisionType]string{
	interview.DecisionPass: "move-to-next-round",
	interview.DecisionFail: "reject",
	interview.DecisionHire: "initiate-hiring",
}

// RecordDecision checks the rating gate, then routes d to its endpoint.
func (r *Recruiter) RecordDecision(ctx context.Context, s Session, id string, d interview.Decision) (*interview.Interview, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return r.post(ctx, s, decisionPaths[d.Type], id, d)
}

func (r *Recruiter) Get(ctx context.Context, s Session, id string) (*interview.Interview, error) {
	var iv interview.Interview
	if err := r.c.do(ctx, http.MethodGet, "/interviews/"+escape(id), s.Token, nil, nil, &iv); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *Recruiter) List(ctx context.Context, s Session, q ListQuery) ([]interview.Summary, error) {
	var out []interview.Summary
	if err := r.c.do(ctx, http.MethodGet, "/interviews", s.Token, q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Recruiter) BookingLink(ctx context.Context, s Session, id string) (*BookingLink, error) {
	var out BookingLink
	if err := r.c.do(ctx, http.MethodGet, "/interviews/"+escape(id)+"/booking-link", s.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PipelineStats is scoped to clientID for internal staff. Client users always
// get their own client.
func (r *Recruiter) PipelineStats(ctx context.Context, s Session, clientID string) (*PipelineStats, error) {
	q := url.Values{}
	if clientID != "" {
		q.Set("client_id", clientID)
	}
	var out PipelineStats
	if err := r.c.do(ctx, http.MethodGet, "/interviews/stats/pipeline", s.Token, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Recruiter) CandidateHistory(ctx context.Context, s Session, candidateID string) (*interview.History, error) {
	var out interview.History
	if err := r.c.do(ctx, http.MethodGet, "/candidates/"+escape(candidateID)+"/interview-history", s.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
