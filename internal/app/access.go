package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/notify"
)

// permissions returns u's effective permissions inside clientID.
func (a *App) permissions(ctx context.Context, u governance.User, clientID string) (governance.PermissionSet, error) {
	if governance.IsInternal(u.Role) {
		return governance.AllPermissions(), nil
	}
	if clientID == "" {
		clientID = u.ClientID
	}
	if clientID == "" {
		return governance.DefaultPermissions(), nil
	}
	assignments, err := a.Store.ListAssignments(ctx, clientID, "")
	if err != nil {
		return governance.PermissionSet{}, err
	}
	roles, err := a.Store.ListRoles(ctx, clientID)
	if err != nil {
		return governance.PermissionSet{}, err
	}
	return governance.Effective(u, clientID, assignments, roles), nil
}

// require lets internal staff through and checks client users against their
// own client and, when perm is set, their effective permissions.
func (a *App) require(ctx context.Context, s Session, clientID, perm, entityType, entityID string) error {
	u := s.User
	if s.Kind != StaffSession {
		return apperr.Forbidden("access denied")
	}
	if governance.IsInternal(u.Role) {
		return nil
	}
	if u.Role != governance.RoleClientUser || u.ClientID == "" || clientID != u.ClientID {
		return a.deny(ctx, s, clientID, entityType, entityID, "outside client scope")
	}
	if perm == "" {
		return nil
	}
	perms, err := a.permissions(ctx, u, clientID)
	if err != nil {
		return err
	}
	if !perms.Has(perm) {
		return a.deny(ctx, s, clientID, entityType, entityID, "missing "+perm)
	}
	return nil
}

// deny records client-user denials and returns Forbidden.
func (a *App) deny(ctx context.Context, s Session, clientID, entityType, entityID, reason string) error {
	if s.User.Role == governance.RoleClientUser {
		e := audit.New(s.Actor(), audit.AccessDenied, entityType, entityID, s.User.ClientID, a.now())
		e.Metadata = map[string]any{"reason": reason, "target_client_id": clientID}
		a.appendAudit(ctx, e)
	}
	return apperr.Forbidden("access denied")
}

func (a *App) appendAudit(ctx context.Context, e audit.Entry) {
	if err := a.Store.AppendAudit(ctx, e); err != nil {
		a.Log.Error("append audit entry failed",
			zap.String("action", e.ActionType),
			zap.String("entity_id", e.EntityID),
			zap.Error(err))
	}
}

func (a *App) notify(ctx context.Context, n notify.Notification) {
	if err := a.Store.CreateNotification(ctx, n); err != nil {
		a.Log.Error("create notification failed",
			zap.String("type", n.Type),
			zap.String("entity_id", n.EntityID),
			zap.Error(err))
	}
}

// publish is best effort, as the row is already committed.
func (a *App) publish(ctx context.Context, e Event) {
	if err := a.Events.Publish(ctx, e); err != nil {
		a.Log.Warn("publish interview event failed",
			zap.String("type", e.Type),
			zap.String("interview_id", e.InterviewID),
			zap.Error(err))
	}
}

func lockKey(interviewID, action string) string {
	return fmt.Sprintf("interview:%s:%s", interviewID, action)
}
