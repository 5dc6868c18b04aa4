package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/interview"
	"talent-scheduler/internal/notify"
)

//go:embed schema.sql
var schemaSQL string

// PGStore is the Postgres implementation of Store.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{DB: pool}
}

// EnsureSchema creates missing tables and indexes.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ---- interviews ----

const interviewSelect = `SELECT i.doc, COALESCE(c.name, ''), COALESCE(j.title, ''), COALESCE(cl.company_name, '')
	FROM interviews i
	LEFT JOIN candidates c ON c.candidate_id = i.candidate_id
	LEFT JOIN jobs j ON j.job_id = i.job_id
	LEFT JOIN clients cl ON cl.client_id = i.client_id`

func encodeInterview(iv *interview.Interview) ([]byte, error) {
	doc := *iv
	doc.CandidateName, doc.JobTitle, doc.CompanyName = "", "", ""
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode interview %s: %w", iv.ID, err)
	}
	return b, nil
}

func scanInterview(row pgx.Row) (*interview.Interview, error) {
	var (
		doc   []byte
		iv    interview.Interview
		names [3]string
	)
	if err := row.Scan(&doc, &names[0], &names[1], &names[2]); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &iv); err != nil {
		return nil, fmt.Errorf("decode interview: %w", err)
	}
	iv.CandidateName, iv.JobTitle, iv.CompanyName = names[0], names[1], names[2]
	if iv.Slots == nil {
		iv.Slots = []interview.Slot{}
	}
	return &iv, nil
}

func insertInterview(ctx context.Context, q interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
}, iv *interview.Interview) error {
	doc, err := encodeInterview(iv)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO interviews
		(interview_id, job_id, candidate_id, client_id, interview_round, interview_status,
		 invite_sent, scheduled_start_time, created_at, updated_at, doc)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		iv.ID, iv.JobID, iv.CandidateID, iv.ClientID, iv.Round, string(iv.Status),
		iv.InviteSent, iv.ScheduledStart, iv.CreatedAt, iv.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("insert interview %s: %w", iv.ID, err)
	}
	return nil
}

func (s *PGStore) CreateInterview(ctx context.Context, iv *interview.Interview) error {
	return insertInterview(ctx, s.DB, iv)
}

func (s *PGStore) GetInterview(ctx context.Context, id string) (*interview.Interview, error) {
	iv, err := scanInterview(s.DB.QueryRow(ctx, interviewSelect+` WHERE i.interview_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("interview")
	}
	return iv, err
}

func (s *PGStore) ListInterviews(ctx context.Context, q InterviewQuery) ([]interview.Interview, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.JobID != "" {
		add("i.job_id = $%d", q.JobID)
	}
	if q.CandidateID != "" {
		add("i.candidate_id = $%d", q.CandidateID)
	}
	if q.CandidateIDs != nil {
		add("i.candidate_id = ANY($%d)", q.CandidateIDs)
	}
	if q.ClientID != "" {
		add("i.client_id = $%d", q.ClientID)
	}
	if q.Status != "" {
		add("i.interview_status = $%d", string(q.Status))
	}

	sql := interviewSelect
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY i.created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	out := []interview.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

func (s *PGStore) MutateInterview(ctx context.Context, id string, fn Mutation) (*interview.Interview, *interview.Interview, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM interviews WHERE interview_id = $1 FOR UPDATE`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperr.NotFound("interview")
	}
	if err != nil {
		return nil, nil, err
	}
	var iv interview.Interview
	if err := json.Unmarshal(doc, &iv); err != nil {
		return nil, nil, fmt.Errorf("decode interview: %w", err)
	}

	spawn, err := fn(&iv)
	if err != nil {
		return nil, nil, err
	}

	if doc, err = encodeInterview(&iv); err != nil {
		return nil, nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE interviews
		SET interview_status = $2, invite_sent = $3, scheduled_start_time = $4, updated_at = $5, doc = $6
		WHERE interview_id = $1`,
		iv.ID, string(iv.Status), iv.InviteSent, iv.ScheduledStart, iv.UpdatedAt, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("update interview %s: %w", id, err)
	}
	if spawn != nil {
		if err := insertInterview(ctx, tx, spawn); err != nil {
			return nil, nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	updated, err := s.GetInterview(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if spawn != nil {
		if spawn, err = s.GetInterview(ctx, spawn.ID); err != nil {
			return nil, nil, err
		}
	}
	return updated, spawn, nil
}

func (s *PGStore) CountByStatus(ctx context.Context, clientID string) (map[interview.Status]int, error) {
	sql := `SELECT interview_status, COUNT(*) FROM interviews`
	var args []any
	if clientID != "" {
		sql += ` WHERE client_id = $1`
		args = append(args, clientID)
	}
	sql += ` GROUP BY interview_status`

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count interviews: %w", err)
	}
	defer rows.Close()

	out := map[interview.Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[interview.Status(status)] = n
	}
	return out, rows.Err()
}

func (s *PGStore) ConfirmedWithoutInvite(ctx context.Context, from, to time.Time) ([]interview.Interview, error) {
	rows, err := s.DB.Query(ctx, interviewSelect+`
		WHERE i.interview_status = $1 AND NOT i.invite_sent
		  AND i.scheduled_start_time >= $2 AND i.scheduled_start_time < $3
		ORDER BY i.scheduled_start_time`,
		string(interview.StatusConfirmed), from, to)
	if err != nil {
		return nil, fmt.Errorf("list confirmed interviews: %w", err)
	}
	defer rows.Close()

	var out []interview.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

// ---- directory ----

func (s *PGStore) GetClient(ctx context.Context, id string) (*Client, error) {
	var c Client
	err := s.DB.QueryRow(ctx, `SELECT client_id, company_name FROM clients WHERE client_id = $1`, id).
		Scan(&c.ID, &c.CompanyName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("client")
	}
	return &c, err
}

func (s *PGStore) GetJob(ctx context.Context, id string) (*Job, error) {
	var j Job
	err := s.DB.QueryRow(ctx, `SELECT job_id, client_id, title FROM jobs WHERE job_id = $1`, id).
		Scan(&j.ID, &j.ClientID, &j.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("job")
	}
	return &j, err
}

const candidateSelect = `SELECT candidate_id, job_id, name, email, COALESCE(candidate_portal_id, ''), status, current_round FROM candidates`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	if err := row.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.PortalID, &c.Status, &c.CurrentRound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	c, err := scanCandidate(s.DB.QueryRow(ctx, candidateSelect+` WHERE candidate_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("candidate")
	}
	return c, err
}

func (s *PGStore) CandidatesForPortal(ctx context.Context, portalID, email string) ([]Candidate, error) {
	rows, err := s.DB.Query(ctx, candidateSelect+`
		WHERE (candidate_portal_id = $1 AND $1 <> '') OR (lower(email) = lower($2) AND $2 <> '')`,
		portalID, email)
	if err != nil {
		return nil, fmt.Errorf("list portal candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateCandidateStatus(ctx context.Context, id, status string, round int) error {
	tag, err := s.DB.Exec(ctx, `UPDATE candidates SET status = $2, current_round = $3, updated_at = now()
		WHERE candidate_id = $1`, id, status, round)
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("candidate")
	}
	return nil
}

const userSelect = `SELECT user_id, email, name, role, COALESCE(client_id, '') FROM users`

func scanUser(row pgx.Row) (*governance.User, error) {
	var u governance.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.ClientID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) GetUserByEmail(ctx context.Context, email string) (*governance.User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, userSelect+` WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	return u, err
}

func (s *PGStore) FindUser(ctx context.Context, idOrEmail string) (*governance.User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, userSelect+` WHERE user_id = $1 OR lower(email) = lower($1) LIMIT 1`, idOrEmail))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	return u, err
}

func (s *PGStore) ListClientUsers(ctx context.Context, clientID string) ([]governance.User, error) {
	rows, err := s.DB.Query(ctx, userSelect+` WHERE client_id = $1 ORDER BY email`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client users: %w", err)
	}
	defer rows.Close()

	var out []governance.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ---- governance ----

const roleSelect = `SELECT role_id, client_id, name, description, permissions, created_at, updated_at FROM client_roles`

func scanRole(row pgx.Row) (*governance.Role, error) {
	var (
		r     governance.Role
		perms []byte
	)
	if err := row.Scan(&r.ID, &r.ClientID, &r.Name, &r.Description, &perms, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &r.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions of %s: %w", r.ID, err)
	}
	return &r, nil
}

func (s *PGStore) ListRoles(ctx context.Context, clientID string) ([]governance.Role, error) {
	query, args := roleSelect+` ORDER BY created_at`, []any{}
	if clientID != "" {
		query, args = roleSelect+` WHERE client_id = $1 ORDER BY created_at`, []any{clientID}
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	out := []governance.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PGStore) GetRole(ctx context.Context, id string) (*governance.Role, error) {
	r, err := scanRole(s.DB.QueryRow(ctx, roleSelect+` WHERE role_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("role")
	}
	return r, err
}

func (s *PGStore) CreateRole(ctx context.Context, r *governance.Role) error {
	perms, err := json.Marshal(r.Permissions)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `INSERT INTO client_roles
		(role_id, client_id, name, description, permissions, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.ClientID, r.Name, r.Description, perms, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *PGStore) UpdateRole(ctx context.Context, r *governance.Role) error {
	perms, err := json.Marshal(r.Permissions)
	if err != nil {
		return err
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE client_roles SET name = $2, description = $3, permissions = $4, updated_at = $5
		WHERE role_id = $1`, r.ID, r.Name, r.Description, perms, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("role")
	}
	if _, err := tx.Exec(ctx, `UPDATE user_client_roles SET role_name = $2 WHERE client_role_id = $1`, r.ID, r.Name); err != nil {
		return fmt.Errorf("rename assignments: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PGStore) DeleteRole(ctx context.Context, id string) (int64, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `DELETE FROM user_client_roles WHERE client_role_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete assignments: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM client_roles WHERE role_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperr.NotFound("role")
	}
	return res.RowsAffected(), tx.Commit(ctx)
}

const assignmentSelect = `SELECT assignment_id, user_id, user_email, client_id, client_role_id, role_name, assigned_by, created_at FROM user_client_roles`

func scanAssignment(row pgx.Row) (*governance.Assignment, error) {
	var a governance.Assignment
	if err := row.Scan(&a.ID, &a.UserID, &a.UserEmail, &a.ClientID, &a.RoleID, &a.RoleName, &a.AssignedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) ListAssignments(ctx context.Context, clientID, userID string) ([]governance.Assignment, error) {
	var (
		where []string
		args  []any
	)
	if clientID != "" {
		args = append(args, clientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("(user_id = $%d OR lower(user_email) = lower($%d))", len(args), len(args)))
	}
	sql := assignmentSelect
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.DB.Query(ctx, sql+" ORDER BY created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := []governance.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *PGStore) GetAssignment(ctx context.Context, id string) (*governance.Assignment, error) {
	a, err := scanAssignment(s.DB.QueryRow(ctx, assignmentSelect+` WHERE assignment_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("assignment")
	}
	return a, err
}

func (s *PGStore) CreateAssignment(ctx context.Context, a *governance.Assignment) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO user_client_roles
		(assignment_id, user_id, user_email, client_id, client_role_id, role_name, assigned_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.UserEmail, a.ClientID, a.RoleID, a.RoleName, a.AssignedBy, a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("user already has this role")
	}
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM user_client_roles WHERE assignment_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("assignment")
	}
	return nil
}

// ---- audit ----

func jsonOrNil(v map[string]any) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *PGStore) AppendAudit(ctx context.Context, e audit.Entry) error {
	prev, err := jsonOrNil(e.PreviousValue)
	if err != nil {
		return err
	}
	next, err := jsonOrNil(e.NewValue)
	if err != nil {
		return err
	}
	meta, err := jsonOrNil(e.Metadata)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `INSERT INTO audit_logs
		(log_id, "timestamp", user_id, user_email, user_role, client_id, action_type, entity_type, entity_id,
		 previous_value, new_value, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.Timestamp, e.UserID, e.UserEmail, e.UserRole, e.ClientID, e.ActionType, e.EntityType, e.EntityID,
		prev, next, meta)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PGStore) ListAudit(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClientID != "" {
		add("client_id = $%d", f.ClientID)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.ActionType != "" {
		add("action_type = $%d", f.ActionType)
	}
	if f.EntityType != "" {
		add("entity_type = $%d", f.EntityType)
	}
	if f.From != nil {
		add(`"timestamp" >= $%d`, *f.From)
	}
	if f.To != nil {
		add(`"timestamp" <= $%d`, *f.To)
	}

	sql := `SELECT log_id, "timestamp", user_id, user_email, user_role, client_id, action_type, entity_type, entity_id,
		previous_value, new_value, metadata FROM audit_logs`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = audit.DefaultLimit
	}
	args = append(args, limit, f.Skip)
	sql += fmt.Sprintf(` ORDER BY "timestamp" DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	out := []audit.Entry{}
	for rows.Next() {
		var (
			entry            audit.Entry
			prev, next, meta []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.UserID, &entry.UserEmail, &entry.UserRole,
			&entry.ClientID, &entry.ActionType, &entry.EntityType, &entry.EntityID, &prev, &next, &meta); err != nil {
			return nil, err
		}
		for _, col := range []struct {
			raw []byte
			dst *map[string]any
		}{{prev, &entry.PreviousValue}, {next, &entry.NewValue}, {meta, &entry.Metadata}} {
			if len(col.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(col.raw, col.dst); err != nil {
				return nil, fmt.Errorf("decode audit %s: %w", entry.ID, err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ---- notifications ----

// visibleSQL matches a notification against the recipient passed as $1 role,
// $2 email and $3 client id.
const visibleSQL = `($1 = ANY(for_roles)
	OR EXISTS (SELECT 1 FROM unnest(for_users) u WHERE lower(u) = lower($2))
	OR ($1 = 'client_user' AND client_id <> '' AND client_id = $3))`

const unreadSQL = `NOT (lower($2) = ANY(read_by))`

func recipientArgs(r notify.Recipient) []any {
	return []any{r.Role, r.Email, r.ClientID}
}

func (s *PGStore) CreateNotification(ctx context.Context, n notify.Notification) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO notifications
		(notification_id, type, title, message, entity_type, entity_id, client_id, for_roles, for_users, read_by, created_at, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		n.ID, n.Type, n.Title, n.Message, n.EntityType, n.EntityID, n.ClientID,
		nonNil(n.ForRoles), nonNil(n.ForUsers), nonNil(n.ReadBy), n.CreatedAt, n.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func (s *PGStore) ListNotifications(ctx context.Context, r notify.Recipient, unreadOnly bool, limit int) ([]notify.Notification, error) {
	sql := `SELECT notification_id, type, title, message, entity_type, entity_id, client_id,
		for_roles, for_users, read_by, created_at, created_by
		FROM notifications WHERE ` + visibleSQL
	if unreadOnly {
		sql += " AND " + unreadSQL
	}
	args := recipientArgs(r)
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []notify.Notification{}
	for rows.Next() {
		var n notify.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.ClientID,
			&n.ForRoles, &n.ForUsers, &n.ReadBy, &n.CreatedAt, &n.CreatedBy); err != nil {
			return nil, err
		}
		n.IsRead = n.ReadByEmail(r.Email)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PGStore) CountUnread(ctx context.Context, r notify.Recipient) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE `+visibleSQL+` AND `+unreadSQL,
		recipientArgs(r)...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *PGStore) MarkNotificationRead(ctx context.Context, id string, r notify.Recipient) error {
	args := append(recipientArgs(r), id)
	tag, err := s.DB.Exec(ctx, `UPDATE notifications
		SET read_by = CASE WHEN `+unreadSQL+` THEN array_append(read_by, lower($2)) ELSE read_by END
		WHERE notification_id = $4 AND `+visibleSQL, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification")
	}
	return nil
}

func (s *PGStore) MarkAllNotificationsRead(ctx context.Context, r notify.Recipient) (int64, error) {
	tag, err := s.DB.Exec(ctx, `UPDATE notifications SET read_by = array_append(read_by, lower($2))
		WHERE `+visibleSQL+` AND `+unreadSQL, recipientArgs(r)...)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) HasNotification(ctx context.Context, typ, entityID string) (bool, error) {
	var ok bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE type = $1 AND entity_id = $2)`,
		typ, entityID).Scan(&ok)
	return ok, err
}
