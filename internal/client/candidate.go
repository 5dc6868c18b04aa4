package client

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/interview"
)

// AuthContext is how a candidate proves access: a portal session, or a
// booking token scoped to one interview.
type AuthContext struct {
	PortalToken  string
	BookingToken string
}

// PortalAuth and BookingAuth build the two AuthContext variants.
func PortalAuth(token string) AuthContext  { return AuthContext{PortalToken: token} }
func BookingAuth(token string) AuthContext { return AuthContext{BookingToken: token} }

func (a AuthContext) validate() error {
	if (a.PortalToken == "") == (a.BookingToken == "") {
		return apperr.Invalid("exactly one of a portal session or a booking token is required")
	}
	return nil
}

// Candidate books interview slots for the candidate.
type Candidate struct {
	c     *Client
	group singleflight.Group
}

func NewCandidate(c *Client) *Candidate {
	return &Candidate{c: c}
}

func (ca *Candidate) fetch(ctx context.Context, id string, auth AuthContext) (*interview.Interview, error) {
	var iv interview.Interview
	var err error
	if auth.PortalToken != "" {
		err = ca.c.do(ctx, http.MethodGet, "/candidate-portal/interviews/"+escape(id), auth.PortalToken, nil, nil, &iv)
	} else {
		err = ca.c.do(ctx, http.MethodGet, "/public/interviews/"+escape(id), "", url.Values{"token": {auth.BookingToken}}, nil, &iv)
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// FetchBookableInterview returns the interview while it still accepts a
// booking. Otherwise the error matches apperr.ErrExpired.
func (ca *Candidate) FetchBookableInterview(ctx context.Context, id string, auth AuthContext) (*interview.Interview, error) {
	if err := auth.validate(); err != nil {
		return nil, err
	}
	iv, err := ca.fetch(ctx, id, auth)
	if err != nil {
		return nil, err
	}
	if iv.Status != interview.StatusAwaiting {
		return nil, apperr.Expired("interview is no longer accepting bookings")
	}
	return iv, nil
}

// BookSlot confirms slotID and returns the re-fetched interview, whose
// scheduled_start_time is authoritative. A taken slot yields a conflict.
func (ca *Candidate) BookSlot(ctx context.Context, id, slotID string, auth AuthContext) (*interview.Interview, error) {
	if err := auth.validate(); err != nil {
		return nil, err
	}
	if slotID == "" {
		return nil, apperr.Invalid("slot_id is required")
	}
	v, err, _ := ca.group.Do("book:"+id+":"+slotID, func() (any, error) {
		body := map[string]any{"slot_id": slotID, "confirmed": true}
		var err error
		if auth.PortalToken != "" {
			err = ca.c.do(ctx, http.MethodPost, "/candidate-portal/interviews/"+escape(id)+"/book-slot", auth.PortalToken, nil, body, nil)
		} else {
			err = ca.c.do(ctx, http.MethodPost, "/public/interviews/"+escape(id)+"/book", "", url.Values{"token": {auth.BookingToken}}, body, nil)
		}
		if err != nil {
			return nil, err
		}
		return ca.fetch(ctx, id, auth)
	})
	if err != nil {
		return nil, err
	}
	return v.(*interview.Interview), nil
}

// MyInterviews lists every interview of the portal user.
func (ca *Candidate) MyInterviews(ctx context.Context, s Session) ([]interview.Interview, error) {
	var out []interview.Interview
	if err := ca.c.do(ctx, http.MethodGet, "/candidate-portal/my-interviews", s.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
