package app

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
)

const csvContentType = "text/csv; charset=utf-8"

func (a *App) sendCSV(c *gin.Context, prefix string, body *bytes.Buffer) {
	name := fmt.Sprintf("%s_%s.csv", prefix, a.now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, csvContentType, body.Bytes())
}

// GET /governance/roles?client_id=
func (a *App) ListRolesHandler(c *gin.Context) {
	roles, err := a.ListRoles(c.Request.Context(), sessionFrom(c), c.Query("client_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// POST /governance/roles?client_id=
func (a *App) CreateRoleHandler(c *gin.Context) {
	var in governance.RoleInput
	if err := bind(c, &in); err != nil {
		a.respondError(c, err)
		return
	}
	r, err := a.CreateRole(c.Request.Context(), sessionFrom(c), c.Query("client_id"), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// PUT /governance/roles/:role_id
func (a *App) UpdateRoleHandler(c *gin.Context) {
	var in governance.RoleInput
	if err := bind(c, &in); err != nil {
		a.respondError(c, err)
		return
	}
	r, err := a.UpdateRole(c.Request.Context(), sessionFrom(c), c.Param("role_id"), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DELETE /governance/roles/:role_id
func (a *App) DeleteRoleHandler(c *gin.Context) {
	if err := a.DeleteRole(c.Request.Context(), sessionFrom(c), c.Param("role_id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}

// POST /governance/roles/defaults?client_id=
func (a *App) SeedDefaultRolesHandler(c *gin.Context) {
	created, err := a.SeedDefaultRoles(c.Request.Context(), sessionFrom(c), c.Query("client_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Created %d default roles", len(created)), "roles": created})
}

type assignRoleReq struct {
	UserID string `json:"user_id"`
	RoleID string `json:"client_role_id"`
}

// POST /governance/user-roles
func (a *App) AssignRoleHandler(c *gin.Context) {
	var req assignRoleReq
	if err := bind(c, &req); err != nil {
		a.respondError(c, err)
		return
	}
	as, err := a.AssignRole(c.Request.Context(), sessionFrom(c), req.UserID, req.RoleID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

// GET /governance/user-roles?client_id=&user_id=
func (a *App) ListAssignmentsHandler(c *gin.Context) {
	out, err := a.ListAssignments(c.Request.Context(), sessionFrom(c), c.Query("client_id"), c.Query("user_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /governance/user-roles/:assignment_id
func (a *App) RevokeRoleHandler(c *gin.Context) {
	if err := a.RevokeRole(c.Request.Context(), sessionFrom(c), c.Param("assignment_id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role revoked successfully"})
}

// GET /governance/permissions?client_id=
func (a *App) MyPermissionsHandler(c *gin.Context) {
	out, err := a.MyPermissions(c.Request.Context(), sessionFrom(c), c.Query("client_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func auditFilter(c *gin.Context) (audit.Filter, error) {
	f := audit.Filter{
		ClientID:   c.Query("client_id"),
		UserID:     c.Query("user_id"),
		ActionType: c.Query("action_type"),
		EntityType: c.Query("entity_type"),
	}
	var err error
	if f.From, err = parseDate(c.Query("from_date"), false); err != nil {
		return f, err
	}
	if f.To, err = parseDate(c.Query("to_date"), true); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return f, err
	}
	if f.Skip, err = queryInt(c, "skip"); err != nil {
		return f, err
	}
	return f, nil
}

// GET /governance/audit
func (a *App) AuditLogHandler(c *gin.Context) {
	f, err := auditFilter(c)
	if err != nil {
		a.respondError(c, err)
		return
	}
	out, err := a.AuditLog(c.Request.Context(), sessionFrom(c), f)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /governance/audit/export
func (a *App) ExportAuditLogHandler(c *gin.Context) {
	f, err := auditFilter(c)
	if err != nil {
		a.respondError(c, err)
		return
	}
	entries, err := a.ExportAuditLog(c.Request.Context(), sessionFrom(c), f)
	if err != nil {
		a.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := audit.WriteCSV(&buf, entries); err != nil {
		a.respondError(c, fmt.Errorf("write audit csv: %w", err))
		return
	}
	a.sendCSV(c, "audit_logs", &buf)
}

// GET /governance/access-matrix?client_id=
func (a *App) AccessMatrixHandler(c *gin.Context) {
	rows, err := a.AccessMatrix(c.Request.Context(), sessionFrom(c), c.Query("client_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /governance/access-matrix/export?client_id=
func (a *App) ExportAccessMatrixHandler(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		a.respondError(c, apperr.Invalid("client_id is required"))
		return
	}
	rows, err := a.ExportAccessMatrix(c.Request.Context(), sessionFrom(c), clientID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := governance.WriteMatrixCSV(&buf, rows); err != nil {
		a.respondError(c, fmt.Errorf("write access matrix csv: %w", err))
		return
	}
	a.sendCSV(c, "access_matrix_"+clientID, &buf)
}
