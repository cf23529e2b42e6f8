// Package grant defines the PermissionGrant value type attached to roles.
//
// A Grant pairs a page key with the set of action tokens a role holds on
// that page. Page keys and action tokens are lowercase-canonical; the
// constructor normalizes its inputs so that the rest of the system never
// has to re-check casing, blanks, or duplicates.
package grant

import "strings"

// Wildcard is the universal action token meaning "every action this page
// defines, including ones added after the grant was written".
const Wildcard = "*"

// Scope ladder tokens shared by most pages. `all` is a capability superset
// of `junior`, which is a superset of `own`; `show` gates page visibility.
const (
	ActionShow   = "show"
	ActionOwn    = "own"
	ActionJunior = "junior"
	ActionAll    = "all"
)

// Grant is a (page, action-set) pair attached to a role.
type Grant struct {
	Page    string   `json:"page" db:"page"`
	Actions []string `json:"actions" db:"actions"`
}

// New builds a normalized Grant: the page key and every action token are
// lowercased and trimmed, blank actions are dropped, and duplicates are
// collapsed while preserving first-seen order. Normalization is idempotent.
func New(page string, actions []string) Grant {
	g := Grant{Page: NormalizePage(page)}
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		a = NormalizeAction(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		g.Actions = append(g.Actions, a)
	}
	return g
}

// Normalize returns the normalized form of g. Equivalent to
// New(g.Page, g.Actions).
func (g Grant) Normalize() Grant {
	return New(g.Page, g.Actions)
}

// Has reports whether the grant carries the given action token.
// The wildcard dominates: a grant holding "*" has every action.
// The action is normalized before comparison.
func (g Grant) Has(action string) bool {
	action = NormalizeAction(action)
	if action == "" {
		return false
	}
	for _, a := range g.Actions {
		if a == Wildcard || a == action {
			return true
		}
	}
	return false
}

// HasExact reports whether the grant carries the literal action token,
// without wildcard expansion. Used when editing grants.
func (g Grant) HasExact(action string) bool {
	action = NormalizeAction(action)
	for _, a := range g.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the grant carries no actions.
func (g Grant) IsEmpty() bool { return len(g.Actions) == 0 }

// Collapse replaces the action set with the literal wildcard when it covers
// every token in vocabulary. A grant that already holds the wildcard, or
// whose page defines no vocabulary, is returned unchanged. Collapsing keeps
// grants forward-compatible: actions added to the page later are covered.
func (g Grant) Collapse(vocabulary []string) Grant {
	if len(vocabulary) == 0 || g.Has(Wildcard) {
		return g
	}
	for _, want := range vocabulary {
		if !g.HasExact(want) {
			return g
		}
	}
	return Grant{Page: g.Page, Actions: []string{Wildcard}}
}

// NormalizePage lowercases and trims a page key.
func NormalizePage(page string) string {
	return strings.ToLower(strings.TrimSpace(page))
}

// NormalizeAction lowercases and trims an action token.
func NormalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}

// NormalizeAll returns the normalized form of a grant list. Grants that
// normalize to an empty page or an empty action set are dropped; grants for
// the same page are merged in first-seen order.
func NormalizeAll(grants []Grant) []Grant {
	byPage := make(map[string]int, len(grants))
	result := make([]Grant, 0, len(grants))
	for _, g := range grants {
		n := g.Normalize()
		if n.Page == "" || n.IsEmpty() {
			continue
		}
		if i, ok := byPage[n.Page]; ok {
			result[i] = New(n.Page, append(result[i].Actions, n.Actions...))
			continue
		}
		byPage[n.Page] = len(result)
		result = append(result, n)
	}
	return result
}

// Find returns the grant for page in grants, if present. The page is
// normalized before lookup.
func Find(grants []Grant, page string) (Grant, bool) {
	page = NormalizePage(page)
	for _, g := range grants {
		if g.Page == page {
			return g, true
		}
	}
	return Grant{}, false
}
