package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talent-scheduler/internal/interview"
	"talent-scheduler/internal/metrics"
)

// requestLogger writes one structured line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// NewRouter mounts every route. limiter guards the unauthenticated public
// booking endpoints and may be nil.
func NewRouter(a *App, limiter *IPRateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(a.Log), metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// OAuth2 callback and legacy booking links are hit by browsers without a token.
	router.GET("/oauth2callback", a.GoogleOAuth2CallbackHandler)
	router.GET("/book/:interviewId/:bookingToken", a.LegacyBookingRedirectHandler)

	api := router.Group("/api")

	public := api.Group("/public")
	if limiter != nil {
		public.Use(limiter.Middleware())
	}
	{
		public.GET("/interviews/:id", a.PublicInterviewHandler)
		public.POST("/interviews/:id/book", a.PublicBookHandler)
	}

	portal := api.Group("/candidate-portal", a.Auth.CandidateAuth())
	{
		portal.GET("/my-interviews", a.MyInterviewsHandler)
		portal.GET("/interviews/:id", a.CandidateGetInterviewHandler)
		portal.POST("/interviews/:id/book-slot", a.CandidateBookSlotHandler)
	}

	staff := api.Group("", a.Auth.StaffAuth())
	{
		interviews := staff.Group("/interviews")
		{
			interviews.POST("", a.CreateInterviewHandler)
			interviews.GET("", a.ListInterviewsHandler)
			interviews.GET("/stats/pipeline", a.PipelineStatsHandler)
			interviews.GET("/:id", a.GetInterviewHandler)
			interviews.PUT("/:id", a.UpdateInterviewHandler)
			interviews.GET("/:id/booking-link", a.BookingLinkHandler)
			interviews.POST("/:id/book-slot", a.BookSlotHandler)
			interviews.POST("/:id/propose-slots", a.ProposeSlotsHandler)
			interviews.POST("/:id/send-invite", a.SendInviteHandler)
			interviews.POST("/:id/mark-completed", a.MarkCompletedHandler)
			interviews.POST("/:id/mark-no-show", a.MarkNoShowHandler)
			interviews.POST("/:id/cancel", a.CancelInterviewHandler)
			interviews.POST("/:id/move-to-next-round", a.DecisionHandler(interview.DecisionPass))
			interviews.POST("/:id/reject", a.DecisionHandler(interview.DecisionFail))
			interviews.POST("/:id/initiate-hiring", a.DecisionHandler(interview.DecisionHire))
		}

		candidates := staff.Group("/candidates")
		{
			candidates.GET("/:id/interview-history", a.CandidateHistoryHandler)
			candidates.GET("/:id/interviews", a.CandidateInterviewsHandler)
		}

		gov := staff.Group("/governance")
		{
			gov.GET("/permissions", a.MyPermissionsHandler)
			gov.GET("/roles", a.ListRolesHandler)
			gov.POST("/roles", a.CreateRoleHandler)
			gov.POST("/roles/defaults", a.SeedDefaultRolesHandler)
			gov.PUT("/roles/:role_id", a.UpdateRoleHandler)
			gov.DELETE("/roles/:role_id", a.DeleteRoleHandler)
			gov.GET("/user-roles", a.ListAssignmentsHandler)
			gov.POST("/user-roles", a.AssignRoleHandler)
			gov.DELETE("/user-roles/:assignment_id", a.RevokeRoleHandler)
			gov.GET("/audit", a.AuditLogHandler)
			gov.GET("/audit/export", a.ExportAuditLogHandler)
			gov.GET("/access-matrix", a.AccessMatrixHandler)
			gov.GET("/access-matrix/export", a.ExportAccessMatrixHandler)
		}

		notifications := staff.Group("/notifications")
		{
			notifications.GET("", a.ListNotificationsHandler)
			notifications.GET("/unread-count", a.UnreadCountHandler)
			notifications.POST("/mark-all-read", a.MarkAllReadHandler)
			notifications.POST("/:id/mark-read", a.MarkReadHandler)
		}

		staff.GET("/calendar/auth", a.GoogleAuthHandler)
	}

	return router
}
