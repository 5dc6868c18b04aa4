// Package governance is the client-scoped RBAC model: roles bundle boolean
// permission flags, assignments bind users to roles inside one client, and
// the access matrix is the OR of a user's roles.
package governance

// PermissionSet is the closed set of permission flags.
type PermissionSet struct {
	CanViewJobs   bool `json:"can_view_jobs"`
	CanCreateJobs bool `json:"can_create_jobs"`
	CanEditJobs   bool `json:"can_edit_jobs"`
	CanDeleteJobs bool `json:"can_delete_jobs"`

	CanViewCandidates   bool `json:"can_view_candidates"`
	CanCreateCandidates bool `json:"can_create_candidates"`
	CanEditCandidates   bool `json:"can_edit_candidates"`
	CanDeleteCandidates bool `json:"can_delete_candidates"`

	CanUpdateCandidateStatus bool `json:"can_update_candidate_status"`
	CanUploadCV              bool `json:"can_upload_cv"`
	CanReplaceCV             bool `json:"can_replace_cv"`
	CanRegenerateStory       bool `json:"can_regenerate_story"`

	CanViewFullCV     bool `json:"can_view_full_cv"`
	CanViewRedactedCV bool `json:"can_view_redacted_cv"`

	CanViewAuditLog  bool `json:"can_view_audit_log"`
	CanManageRoles   bool `json:"can_manage_roles"`
	CanManageUsers   bool `json:"can_manage_users"`
	CanExportReports bool `json:"can_export_reports"`
}

// Permission keys, in column order.
const (
	ViewJobs              = "can_view_jobs"
	CreateJobs            = "can_create_jobs"
	EditJobs              = "can_edit_jobs"
	DeleteJobs            = "can_delete_jobs"
	ViewCandidates        = "can_view_candidates"
	CreateCandidates      = "can_create_candidates"
	EditCandidates        = "can_edit_candidates"
	DeleteCandidates      = "can_delete_candidates"
	UpdateCandidateStatus = "can_update_candidate_status"
	UploadCV              = "can_upload_cv"
	ReplaceCV             = "can_replace_cv"
	RegenerateStory       = "can_regenerate_story"
	ViewFullCV            = "can_view_full_cv"
	ViewRedactedCV        = "can_view_redacted_cv"
	ViewAuditLog          = "can_view_audit_log"
	ManageRoles           = "can_manage_roles"
	ManageUsers           = "can_manage_users"
	ExportReports         = "can_export_reports"
)

// Keys lists every permission key in the order of the struct fields.
var Keys = []string{
	ViewJobs, CreateJobs, EditJobs, DeleteJobs,
	ViewCandidates, CreateCandidates, EditCandidates, DeleteCandidates,
	UpdateCandidateStatus, UploadCV, ReplaceCV, RegenerateStory,
	ViewFullCV, ViewRedactedCV,
	ViewAuditLog, ManageRoles, ManageUsers, ExportReports,
}

// Category groups keys for display.
type Category struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

var Categories = []Category{
	{Name: "Job Management", Keys: Keys[0:4]},
	{Name: "Candidate Management", Keys: Keys[4:8]},
	{Name: "Candidate Actions", Keys: Keys[8:12]},
	{Name: "CV Access", Keys: Keys[12:14]},
	{Name: "Governance", Keys: Keys[14:18]},
}

// fields returns pointers to the flags in Keys order.
func (p *PermissionSet) fields() []*bool {
	return []*bool{
		&p.CanViewJobs, &p.CanCreateJobs, &p.CanEditJobs, &p.CanDeleteJobs,
		&p.CanViewCandidates, &p.CanCreateCandidates, &p.CanEditCandidates, &p.CanDeleteCandidates,
		&p.CanUpdateCandidateStatus, &p.CanUploadCV, &p.CanReplaceCV, &p.CanRegenerateStory,
		&p.CanViewFullCV, &p.CanViewRedactedCV,
		&p.CanViewAuditLog, &p.CanManageRoles, &p.CanManageUsers, &p.CanExportReports,
	}
}

// Has reports whether key is granted. Unknown keys are never granted.
func (p PermissionSet) Has(key string) bool {
	for i, f := range p.fields() {
		if Keys[i] == key {
			return *f
		}
	}
	return false
}

// Union returns the flag-wise OR of p and o.
func (p PermissionSet) Union(o PermissionSet) PermissionSet {
	out := p
	of := o.fields()
	for i, f := range out.fields() {
		*f = *f || *of[i]
	}
	return out
}

// Values returns the flags in Keys order.
func (p PermissionSet) Values() []bool {
	fs := p.fields()
	out := make([]bool, len(fs))
	for i, f := range fs {
		out[i] = *f
	}
	return out
}

// Map keys the flags by permission name, as stored in audit values.
func (p PermissionSet) Map() map[string]any {
	out := make(map[string]any, len(Keys))
	for i, v := range p.Values() {
		out[Keys[i]] = v
	}
	return out
}

// IsKnown reports whether key names a permission.
func IsKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// DefaultPermissions is what a new role starts with: read access only.
func DefaultPermissions() PermissionSet {
	return PermissionSet{CanViewJobs: true, CanViewCandidates: true, CanViewRedactedCV: true}
}

// AllPermissions grants everything.
func AllPermissions() PermissionSet {
	var p PermissionSet
	for _, f := range p.fields() {
		*f = true
	}
	return p
}

// BasicClientPermissions is the operational set for a client user who has
// no role assignment yet.
func BasicClientPermissions() PermissionSet {
	return PermissionSet{
		CanViewJobs:              true,
		CanCreateJobs:            true,
		CanEditJobs:              true,
		CanViewCandidates:        true,
		CanCreateCandidates:      true,
		CanEditCandidates:        true,
		CanUpdateCandidateStatus: true,
		CanUploadCV:              true,
		CanViewRedactedCV:        true,
	}
}
