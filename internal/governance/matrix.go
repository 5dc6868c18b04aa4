package governance

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Staff roles carried by the session token.
const (
	RoleAdmin      = "admin"
	RoleRecruiter  = "recruiter"
	RoleClientUser = "client_user"
)

// IsInternal reports whether role belongs to the agency itself. Internal
// staff bypass client permission checks.
func IsInternal(role string) bool {
	return role == RoleAdmin || role == RoleRecruiter
}

// User is the slice of a staff account the permission model needs.
type User struct {
	ID       string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
}

// owns reports whether a is bound to u. Assignments made by email and by
// user id both count.
func (u User) owns(a Assignment) bool {
	return (u.ID != "" && a.UserID == u.ID) || (u.Email != "" && strings.EqualFold(a.UserID, u.Email))
}

// Effective computes u's permissions inside clientID. An empty clientID
// means the user's own client.
func Effective(u User, clientID string, assignments []Assignment, roles []Role) PermissionSet {
	if IsInternal(u.Role) {
		return AllPermissions()
	}
	if clientID == "" {
		clientID = u.ClientID
	}
	if clientID == "" {
		return DefaultPermissions()
	}

	byID := make(map[string]Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	var (
		perms PermissionSet
		bound bool
	)
	for _, a := range assignments {
		if a.ClientID != clientID || !u.owns(a) {
			continue
		}
		bound = true
		if r, ok := byID[a.RoleID]; ok {
			perms = perms.Union(r.Permissions)
		}
	}
	if !bound {
		return BasicClientPermissions()
	}
	return perms
}

// MatrixRow is one line of the access matrix.
type MatrixRow struct {
	UserID      string        `json:"user_id"`
	UserEmail   string        `json:"user_email"`
	UserName    string        `json:"user_name"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name"`
	Roles       []string      `json:"roles"`
	Permissions PermissionSet `json:"permissions"`
}

// BuildMatrix projects the effective permissions of every user of a client.
func BuildMatrix(clientID, clientName string, users []User, assignments []Assignment, roles []Role) []MatrixRow {
	rows := make([]MatrixRow, 0, len(users))
	for _, u := range users {
		id := u.ID
		if id == "" {
			id = u.Email
		}
		name := u.Name
		if name == "" {
			name = u.Email
		}
		names := []string{}
		for _, a := range assignments {
			if a.ClientID == clientID && u.owns(a) {
				names = append(names, a.RoleName)
			}
		}
		rows = append(rows, MatrixRow{
			UserID:      id,
			UserEmail:   u.Email,
			UserName:    name,
			ClientID:    clientID,
			ClientName:  clientName,
			Roles:       names,
			Permissions: Effective(u, clientID, assignments, roles),
		})
	}
	return rows
}

// WriteMatrixCSV writes rows with one column per permission key.
func WriteMatrixCSV(w io.Writer, rows []MatrixRow) error {
	cw := csv.NewWriter(w)
	header := append([]string{"user_email", "user_name", "client_name", "roles"}, Keys...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.UserEmail, r.UserName, r.ClientName, strings.Join(r.Roles, ", ")}
		for _, v := range r.Permissions.Values() {
			rec = append(rec, strconv.FormatBool(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
