package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
	"talent-scheduler/internal/interview"
	"talent-scheduler/internal/notify"
)

// fakeStore is an in-memory Store. One mutex serialises everything, which
// gives MutateInterview the same first-writer-wins behaviour as FOR UPDATE.
type fakeStore struct {
	mu sync.Mutex

	clients    map[string]Client
	jobs       map[string]Job
	candidates map[string]Candidate
	users      []governance.User

	interviews    map[string]*interview.Interview
	roles         map[string]governance.Role
	assignments   map[string]governance.Assignment
	audits        []audit.Entry
	notifications []notify.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients: map[string]Client{
			"CL1": {ID: "CL1", CompanyName: "Acme"},
			"CL2": {ID: "CL2", CompanyName: "Globex"},
		},
		jobs: map[string]Job{
			"J1": {ID: "J1", ClientID: "CL1", Title: "Backend Engineer"},
			"J2": {ID: "J2", ClientID: "CL2", Title: "Designer"},
		},
		candidates: map[string]Candidate{
			"C1": {ID: "C1", JobID: "J1", Name: "Priya", Email: "priya@example.com", PortalID: "P1", Status: "NEW"},
			"C2": {ID: "C2", JobID: "J2", Name: "Omar", Email: "omar@example.com", PortalID: "P2", Status: "NEW"},
		},
		users: []governance.User{
			{ID: "U_ADMIN", Email: "admin@arbeit.io", Name: "Admin", Role: governance.RoleAdmin},
			{ID: "U_REC", Email: "rec@arbeit.io", Name: "Rita", Role: governance.RoleRecruiter},
			{ID: "U_ANN", Email: "ann@acme.io", Name: "Ann", Role: governance.RoleClientUser, ClientID: "CL1"},
			{ID: "U_CARL", Email: "carl@acme.io", Name: "Carl", Role: governance.RoleClientUser, ClientID: "CL1"},
			{ID: "U_BOB", Email: "bob@globex.io", Name: "Bob", Role: governance.RoleClientUser, ClientID: "CL2"},
		},
		interviews:  map[string]*interview.Interview{},
		roles:       map[string]governance.Role{},
		assignments: map[string]governance.Assignment{},
	}
}

func cloneInterview(iv *interview.Interview) *interview.Interview {
	cp := *iv
	cp.Slots = append([]interview.Slot(nil), iv.Slots...)
	return &cp
}

// enrich must be called with mu held.
func (f *fakeStore) enrich(iv *interview.Interview) *interview.Interview {
	out := cloneInterview(iv)
	if c, ok := f.candidates[iv.CandidateID]; ok {
		out.CandidateName = c.Name
	}
	if j, ok := f.jobs[iv.JobID]; ok {
		out.JobTitle = j.Title
	}
	if c, ok := f.clients[iv.ClientID]; ok {
		out.CompanyName = c.CompanyName
	}
	return out
}

func (f *fakeStore) CreateInterview(_ context.Context, iv *interview.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.interviews[iv.ID]; dup {
		return apperr.Conflict("interview %s exists", iv.ID)
	}
	f.interviews[iv.ID] = cloneInterview(iv)
	return nil
}

func (f *fakeStore) GetInterview(_ context.Context, id string) (*interview.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok {
		return nil, apperr.NotFound("interview")
	}
	return f.enrich(iv), nil
}

func (f *fakeStore) ListInterviews(_ context.Context, q InterviewQuery) ([]interview.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids map[string]bool
	if len(q.CandidateIDs) > 0 {
		ids = map[string]bool{}
		for _, id := range q.CandidateIDs {
			ids[id] = true
		}
	}
	out := []interview.Interview{}
	for _, iv := range f.interviews {
		switch {
		case q.JobID != "" && iv.JobID != q.JobID,
			q.CandidateID != "" && iv.CandidateID != q.CandidateID,
			ids != nil && !ids[iv.CandidateID],
			q.ClientID != "" && iv.ClientID != q.ClientID,
			q.Status != "" && iv.Status != q.Status:
			continue
		}
		out = append(out, *f.enrich(iv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Skip >= len(out) {
		return []interview.Interview{}, nil
	}
	out = out[q.Skip:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) MutateInterview(_ context.Context, id string, fn Mutation) (*interview.Interview, *interview.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.interviews[id]
	if !ok {
		return nil, nil, apperr.NotFound("interview")
	}
	work := cloneInterview(cur)
	spawn, err := fn(work)
	if err != nil {
		return nil, nil, err
	}
	f.interviews[id] = work
	var spawned *interview.Interview
	if spawn != nil {
		f.interviews[spawn.ID] = cloneInterview(spawn)
		spawned = f.enrich(spawn)
	}
	return f.enrich(work), spawned, nil
}

func (f *fakeStore) CountByStatus(_ context.Context, clientID string) (map[interview.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[interview.Status]int{}
	for _, iv := range f.interviews {
		if clientID == "" || iv.ClientID == clientID {
			out[iv.Status]++
		}
	}
	return out, nil
}

func (f *fakeStore) ConfirmedWithoutInvite(_ context.Context, from, to time.Time) ([]interview.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []interview.Interview{}
	for _, iv := range f.interviews {
		if iv.Status != interview.StatusConfirmed || iv.InviteSent || iv.ScheduledStart == nil {
			continue
		}
		if iv.ScheduledStart.Before(from) || !iv.ScheduledStart.Before(to) {
			continue
		}
		out = append(out, *f.enrich(iv))
	}
	return out, nil
}

func (f *fakeStore) GetClient(_ context.Context, id string) (*Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, apperr.NotFound("client")
	}
	return &c, nil
}

func (f *fakeStore) GetJob(_ context.Context, id string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job")
	}
	return &j, nil
}

func (f *fakeStore) GetCandidate(_ context.Context, id string) (*Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return nil, apperr.NotFound("candidate")
	}
	return &c, nil
}

func (f *fakeStore) CandidatesForPortal(_ context.Context, portalID, email string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Candidate{}
	for _, c := range f.candidates {
		if (portalID != "" && c.PortalID == portalID) || (email != "" && strings.EqualFold(c.Email, email)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateCandidateStatus(_ context.Context, id, status string, round int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return apperr.NotFound("candidate")
	}
	c.Status, c.CurrentRound = status, round
	f.candidates[id] = c
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*governance.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeStore) FindUser(_ context.Context, idOrEmail string) (*governance.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == idOrEmail || strings.EqualFold(u.Email, idOrEmail) {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeStore) ListClientUsers(_ context.Context, clientID string) ([]governance.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []governance.User{}
	for _, u := range f.users {
		if u.ClientID == clientID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRoles(_ context.Context, clientID string) ([]governance.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []governance.Role{}
	for _, r := range f.roles {
		if clientID == "" || r.ClientID == clientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetRole(_ context.Context, id string) (*governance.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, apperr.NotFound("role")
	}
	return &r, nil
}

func (f *fakeStore) CreateRole(_ context.Context, r *governance.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[r.ID] = *r
	return nil
}

func (f *fakeStore) UpdateRole(_ context.Context, r *governance.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[r.ID]; !ok {
		return apperr.NotFound("role")
	}
	f.roles[r.ID] = *r
	for id, a := range f.assignments {
		if a.RoleID == r.ID {
			a.RoleName = r.Name
			f.assignments[id] = a
		}
	}
	return nil
}

func (f *fakeStore) DeleteRole(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return 0, apperr.NotFound("role")
	}
	var n int64
	for aid, a := range f.assignments {
		if a.RoleID == id {
			delete(f.assignments, aid)
			n++
		}
	}
	delete(f.roles, id)
	return n, nil
}

func (f *fakeStore) ListAssignments(_ context.Context, clientID, userID string) ([]governance.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []governance.Assignment{}
	for _, a := range f.assignments {
		if clientID != "" && a.ClientID != clientID {
			continue
		}
		if userID != "" && a.UserID != userID && !strings.EqualFold(a.UserEmail, userID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetAssignment(_ context.Context, id string) (*governance.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return nil, apperr.NotFound("assignment")
	}
	return &a, nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, a *governance.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.assignments {
		if ex.UserID == a.UserID && ex.RoleID == a.RoleID {
			return apperr.Conflict("user already has this role")
		}
	}
	f.assignments[a.ID] = *a
	return nil
}

func (f *fakeStore) DeleteAssignment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[id]; !ok {
		return apperr.NotFound("assignment")
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeStore) AppendAudit(_ context.Context, e audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, e)
	return nil
}

func (f *fakeStore) ListAudit(_ context.Context, flt audit.Filter) ([]audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []audit.Entry{}
	for i := len(f.audits) - 1; i >= 0; i-- {
		if flt.Matches(f.audits[i]) {
			out = append(out, f.audits[i])
		}
	}
	if flt.Skip >= len(out) {
		return []audit.Entry{}, nil
	}
	out = out[flt.Skip:]
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

func (f *fakeStore) auditsOf(action string) []audit.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []audit.Entry
	for _, e := range f.audits {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) CreateNotification(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) ListNotifications(_ context.Context, r notify.Recipient, unreadOnly bool, limit int) ([]notify.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []notify.Notification{}
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.notifications[i]
		if !n.VisibleTo(r) {
			continue
		}
		n.IsRead = n.ReadByEmail(r.Email)
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) CountUnread(_ context.Context, r notify.Recipient) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, x := range f.notifications {
		if x.VisibleTo(r) && !x.ReadByEmail(r.Email) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, id string, r notify.Recipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.ID != id || !n.VisibleTo(r) {
			continue
		}
		if !n.ReadByEmail(r.Email) {
			n.ReadBy = append(n.ReadBy, strings.ToLower(r.Email))
		}
		return nil
	}
	return apperr.NotFound("notification")
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, r notify.Recipient) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.VisibleTo(r) && !n.ReadByEmail(r.Email) {
			n.ReadBy = append(n.ReadBy, strings.ToLower(r.Email))
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HasNotification(_ context.Context, typ, entityID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.Type == typ && n.EntityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) notificationsOf(typ string) []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Notification
	for _, n := range f.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

var _ Store = (*fakeStore)(nil)
