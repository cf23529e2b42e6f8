// Package matrix declares the static permission catalog: which pages exist
// and which action tokens each page recognizes.
//
// The catalog serves two roles: it is the schema the admin console renders
// grant-editing forms from, and it is the authorization dictionary the
// engine validates tokens against. Unknown pages resolve to an empty
// vocabulary so that a page added to the product before it is added here
// fails closed rather than open.
package matrix

import "github.com/xraph/steward/grant"

// Page keys, lowercase-canonical.
const (
	PageLeads        = "leads"
	PageAttendance   = "attendance"
	PageSettings     = "settings"
	PageDepartments  = "departments"
	PageDesignations = "designations"
	PageRoles        = "roles"
	PageUsers        = "users"
	PageAttachments  = "attachments"
	PageLeadStatus   = "lead_status"
	PageReports      = "reports"
)

// Page-specific action tokens, evaluated as plain membership checks
// independent of the show/own/junior/all scope ladder.
const (
	ActionAssign          = "assign"
	ActionCreate          = "create"
	ActionEditOthers      = "edit_others"
	ActionAttendanceAdmin = "attendance_admin"
	ActionExport          = "export"
	ActionUpload          = "upload"
)

// scopeLadder is the cross-cutting vocabulary most pages share.
var scopeLadder = []string{grant.ActionShow, grant.ActionOwn, grant.ActionJunior, grant.ActionAll}

// catalog maps each page to its ordered action vocabulary. The wildcard is
// implied everywhere and never listed.
var catalog = map[string][]string{
	PageLeads:        append(append([]string{}, scopeLadder...), ActionAssign, ActionCreate, ActionExport),
	PageAttendance:   append(append([]string{}, scopeLadder...), ActionAttendanceAdmin),
	PageSettings:     {grant.ActionShow, grant.ActionAll},
	PageDepartments:  {grant.ActionShow, grant.ActionAll},
	PageDesignations: {grant.ActionShow, grant.ActionAll},
	PageRoles:        {grant.ActionShow, grant.ActionAll},
	PageUsers:        append(append([]string{}, scopeLadder...), ActionCreate, ActionEditOthers),
	PageAttachments:  append(append([]string{}, scopeLadder...), ActionUpload),
	PageLeadStatus:   {grant.ActionShow, grant.ActionAll},
	PageReports:      {grant.ActionShow, grant.ActionOwn, grant.ActionJunior, grant.ActionAll, ActionExport},
}

// pageOrder fixes the order pages are presented in (form rendering and
// list endpoints iterate this, not the map).
var pageOrder = []string{
	PageLeads,
	PageAttendance,
	PageSettings,
	PageDepartments,
	PageDesignations,
	PageRoles,
	PageUsers,
	PageAttachments,
	PageLeadStatus,
	PageReports,
}

// ActionsFor returns the ordered action vocabulary for a page. Unknown
// pages yield an empty slice, meaning no capability, never an error. The
// returned slice is a copy; callers may mutate it.
func ActionsFor(page string) []string {
	actions, ok := catalog[grant.NormalizePage(page)]
	if !ok {
		return nil
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}

// IsValidAction reports whether the page recognizes the action token.
// The wildcard is valid for every known page.
func IsValidAction(page, action string) bool {
	actions, ok := catalog[grant.NormalizePage(page)]
	if !ok {
		return false
	}
	action = grant.NormalizeAction(action)
	if action == grant.Wildcard {
		return true
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// IsKnownPage reports whether the catalog declares the page.
func IsKnownPage(page string) bool {
	_, ok := catalog[grant.NormalizePage(page)]
	return ok
}

// Pages returns all catalog pages in presentation order.
func Pages() []string {
	out := make([]string, len(pageOrder))
	copy(out, pageOrder)
	return out
}
