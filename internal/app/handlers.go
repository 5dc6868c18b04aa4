package app

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/interview"
)

// bind decodes an optional JSON body into dst. An empty body leaves dst as is.
func bind(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Invalid("invalid request body: %v", err)
	}
	return nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Invalid("%s must be a non-negative integer", key)
	}
	return n, nil
}

// POST /interviews
func (a *App) CreateInterviewHandler(c *gin.Context) {
	var p interview.Proposal
	if err := bind(c, &p); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.CreateInterview(c.Request.Context(), sessionFrom(c), p)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, iv)
}

// GET /interviews?job_id=&candidate_id=&status_filter=&skip=&limit=
func (a *App) ListInterviewsHandler(c *gin.Context) {
	q := InterviewQuery{JobID: c.Query("job_id"), CandidateID: c.Query("candidate_id")}
	if v := c.Query("status_filter"); v != "" {
		st, err := interview.ParseStatus(v)
		if err != nil {
			a.respondError(c, apperr.Invalid("unknown status_filter %q", v))
			return
		}
		q.Status = st
	}
	var err error
	if q.Skip, err = queryInt(c, "skip"); err != nil {
		a.respondError(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		a.respondError(c, err)
		return
	}
	out, err := a.ListInterviews(c.Request.Context(), sessionFrom(c), q)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /interviews/:id
func (a *App) GetInterviewHandler(c *gin.Context) {
	iv, err := a.GetInterview(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// PUT /interviews/:id
func (a *App) UpdateInterviewHandler(c *gin.Context) {
	var u interview.DetailsUpdate
	if err := bind(c, &u); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.UpdateDetails(c.Request.Context(), sessionFrom(c), c.Param("id"), u)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

type bookSlotReq struct {
	SlotID    string `json:"slot_id"`
	Confirmed *bool  `json:"confirmed"`
}

func (r bookSlotReq) validate() error {
	if r.SlotID == "" {
		return apperr.Invalid("slot_id is required")
	}
	if r.Confirmed != nil && !*r.Confirmed {
		return apperr.Invalid("slot selection must be confirmed")
	}
	return nil
}

// POST /interviews/:id/book-slot
func (a *App) BookSlotHandler(c *gin.Context) {
	var req bookSlotReq
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	if err := req.validate(); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.BookSlot(c.Request.Context(), sessionFrom(c), c.Param("id"), req.SlotID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// POST /interviews/:id/propose-slots
func (a *App) ProposeSlotsHandler(c *gin.Context) {
	var req struct {
		Slots []interview.SlotInput `json:"proposed_slots"`
	}
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.ProposeSlots(c.Request.Context(), sessionFrom(c), c.Param("id"), req.Slots)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// POST /interviews/:id/send-invite
func (a *App) SendInviteHandler(c *gin.Context) {
	var req interview.InviteRequest
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.SendInvite(c.Request.Context(), sessionFrom(c), c.Param("id"), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interview invite sent successfully", "interview": iv})
}

// POST /interviews/:id/mark-completed
func (a *App) MarkCompletedHandler(c *gin.Context) {
	iv, err := a.MarkCompleted(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interview marked as completed", "interview": iv})
}

// POST /interviews/:id/mark-no-show
func (a *App) MarkNoShowHandler(c *gin.Context) {
	iv, err := a.MarkNoShow(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interview marked as no-show", "interview": iv})
}

// POST /interviews/:id/cancel
func (a *App) CancelInterviewHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.Cancel(c.Request.Context(), sessionFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interview cancelled", "interview": iv})
}

var decisionMessages = map[interview.DecisionType]string{
	interview.DecisionPass: "Candidate moved to next round",
	interview.DecisionFail: "Candidate rejected",
	interview.DecisionHire: "Hiring initiated",
}

// DecisionHandler serves /move-to-next-round, /reject and /initiate-hiring.
func (a *App) DecisionHandler(typ interview.DecisionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var d interview.Decision
		if err := bind(c, &d); err != nil {
			a.respondError(c, err)
			return
		}
		d.Type = typ
		out, err := a.Decide(c.Request.Context(), sessionFrom(c), c.Param("id"), d)
		if err != nil {
			a.respondError(c, err)
			return
		}
		body := gin.H{"message": decisionMessages[typ], "interview": out.Interview}
		if out.Spawned != nil {
			body["next_interview"] = out.Spawned
		}
		c.JSON(http.StatusOK, body)
	}
}

// GET /interviews/:id/booking-link
func (a *App) BookingLinkHandler(c *gin.Context) {
	link, err := a.BookingLink(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// GET /interviews/stats/pipeline?client_id=
func (a *App) PipelineStatsHandler(c *gin.Context) {
	st, err := a.Pipeline(c.Request.Context(), sessionFrom(c), c.Query("client_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /candidates/:id/interview-history
func (a *App) CandidateHistoryHandler(c *gin.Context) {
	h, err := a.CandidateHistory(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// GET /candidates/:id/interviews
func (a *App) CandidateInterviewsHandler(c *gin.Context) {
	out, err := a.CandidateInterviews(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
