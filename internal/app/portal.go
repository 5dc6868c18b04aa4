package app

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// GET /candidate-portal/my-interviews
func (a *App) MyInterviewsHandler(c *gin.Context) {
	out, err := a.MyInterviews(c.Request.Context(), sessionFrom(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /candidate-portal/interviews/:id
func (a *App) CandidateGetInterviewHandler(c *gin.Context) {
	iv, err := a.CandidateInterview(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// POST /candidate-portal/interviews/:id/book-slot
func (a *App) CandidateBookSlotHandler(c *gin.Context) {
	var req bookSlotReq
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	if err := req.validate(); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.BookAsCandidate(c.Request.Context(), sessionFrom(c), c.Param("id"), req.SlotID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

// GET /public/interviews/:id?token=
func (a *App) PublicInterviewHandler(c *gin.Context) {
	view, err := a.PublicInterview(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /public/interviews/:id/book?token=
// slot_id is read from the body, or from the query for older links.
func (a *App) PublicBookHandler(c *gin.Context) {
	var req bookSlotReq
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	if req.SlotID == "" {
		req.SlotID = c.Query("slot_id")
	}
	if err := req.validate(); err != nil {
		a.respondError(c, err)
		return
	}
	iv, err := a.BookWithToken(c.Request.Context(), c.Param("id"), c.Query("token"), req.SlotID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Interview slot confirmed",
		"interview_id":         iv.ID,
		"scheduled_start_time": iv.ScheduledStart,
		"scheduled_end_time":   iv.ScheduledEnd,
	})
}

// GET /book/:interviewId/:bookingToken
// Old emails link here; booking now happens in the candidate portal.
func (a *App) LegacyBookingRedirectHandler(c *gin.Context) {
	next := "/candidate/interviews/" + url.PathEscape(c.Param("interviewId"))
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/candidate/login?next=%s", a.FrontendURL, next))
}
