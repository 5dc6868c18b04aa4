package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/notify"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

func recipientOf(s Session) (notify.Recipient, error) {
	if s.Kind != StaffSession {
		return notify.Recipient{}, apperr.Forbidden("access denied")
	}
	return notify.Recipient{Email: s.User.Email, Role: s.User.Role, ClientID: s.User.ClientID}, nil
}

func (a *App) Notifications(ctx context.Context, s Session, unreadOnly bool, limit int) ([]notify.Notification, error) {
	r, err := recipientOf(s)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultNotificationLimit
	case limit > maxNotificationLimit:
		limit = maxNotificationLimit
	}
	return a.Store.ListNotifications(ctx, r, unreadOnly, limit)
}

func (a *App) UnreadCount(ctx context.Context, s Session) (int, error) {
	r, err := recipientOf(s)
	if err != nil {
		return 0, err
	}
	return a.Store.CountUnread(ctx, r)
}

func (a *App) MarkRead(ctx context.Context, s Session, id string) error {
	r, err := recipientOf(s)
	if err != nil {
		return err
	}
	return a.Store.MarkNotificationRead(ctx, id, r)
}

func (a *App) MarkAllRead(ctx context.Context, s Session) (int64, error) {
	r, err := recipientOf(s)
	if err != nil {
		return 0, err
	}
	return a.Store.MarkAllNotificationsRead(ctx, r)
}

// GET /notifications?unread_only=&limit=
func (a *App) ListNotificationsHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		a.respondError(c, err)
		return
	}
	unread := c.Query("unread_only") == "true" || c.Query("unread_only") == "1"
	out, err := a.Notifications(c.Request.Context(), sessionFrom(c), unread, limit)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /notifications/unread-count
func (a *App) UnreadCountHandler(c *gin.Context) {
	n, err := a.UnreadCount(c.Request.Context(), sessionFrom(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// POST /notifications/:id/mark-read
func (a *App) MarkReadHandler(c *gin.Context) {
	if err := a.MarkRead(c.Request.Context(), sessionFrom(c), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// POST /notifications/mark-all-read
func (a *App) MarkAllReadHandler(c *gin.Context) {
	n, err := a.MarkAllRead(c.Request.Context(), sessionFrom(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}
