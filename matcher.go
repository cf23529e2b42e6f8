package steward

import "github.com/xraph/steward/grant"

// actionScope classifies which token of a grant satisfied an action. The
// wildcard dominates: a grant holding "*" satisfies every action on its
// page, including actions added to the vocabulary after the grant was
// written.
func actionScope(g grant.Grant, action string) (Scope, bool) {
	if g.HasExact(grant.Wildcard) {
		return ScopeWildcard, true
	}
	if g.HasExact(action) {
		return ScopeAction, true
	}
	return "", false
}

// ownsRecord reports whether the principal owns the record. Ownership
// matches on the owner role or the owner user; unset owner fields never
// match.
func ownsRecord(p Principal, rec Record) bool {
	if rec.OwnerRoleID != "" && rec.OwnerRoleID == p.RoleID {
		return true
	}
	if rec.OwnerUserID != "" && rec.OwnerUserID == p.UserID {
		return true
	}
	return false
}
