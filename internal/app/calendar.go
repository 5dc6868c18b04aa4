package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"talent-scheduler/internal/config"
)

// EventRequest describes the calendar event created for an invite.
type EventRequest struct {
	InterviewID   string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	TimeZone      string
	AttendeeEmail string
}

// CalendarEvent is what the calendar returned.
type CalendarEvent struct {
	EventID      string
	MeetingLink  string
	CalendarLink string
}

// CalendarCreator creates invite events with a video conference attached.
type CalendarCreator interface {
	CreateEvent(ctx context.Context, req EventRequest) (*CalendarEvent, error)
}

// OAuthConfig returns the Google OAuth client, or nil when it is not set up.
func OAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	if !cfg.OAuthConfigured() {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// GoogleCalendar creates events on the organiser calendar the refresh token
// belongs to.
type GoogleCalendar struct {
	tokens     oauth2.TokenSource
	calendarID string
	opts       []option.ClientOption
}

// NewGoogleCalendar returns nil unless both the OAuth client and a refresh
// token are configured.
func NewGoogleCalendar(cfg config.GoogleConfig) *GoogleCalendar {
	oc := OAuthConfig(cfg)
	if oc == nil || cfg.RefreshToken == "" {
		return nil
	}
	return &GoogleCalendar{
		tokens:     oc.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		calendarID: cfg.CalendarID,
	}
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, req EventRequest) (*CalendarEvent, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, g.tokens))}, g.opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	ev := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: req.TimeZone},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: req.TimeZone},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             req.InterviewID + "-" + uuid.NewString()[:8],
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	if req.AttendeeEmail != "" {
		ev.Attendees = []*calendar.EventAttendee{{Email: req.AttendeeEmail}}
	}

	created, err := srv.Events.Insert(g.calendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	out := &CalendarEvent{EventID: created.Id, MeetingLink: created.HangoutLink, CalendarLink: created.HtmlLink}
	if out.MeetingLink == "" && created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				out.MeetingLink = ep.Uri
				break
			}
		}
	}
	return out, nil
}

// GET /calendar/auth
// Starts the one-time consent flow that yields the organiser refresh token.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.OAuth == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	state := uuid.NewString()
	url := a.OAuth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.JSON(http.StatusOK, gin.H{
		"auth_url": url,
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.OAuth == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	token, err := a.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		a.Log.Warn("oauth code exchange failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	if token.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no refresh token returned, revoke access and retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Authorization successful. Set GOOGLE_REFRESH_TOKEN and restart.",
		"state":         c.Query("state"),
		"refresh_token": token.RefreshToken,
	})
}
