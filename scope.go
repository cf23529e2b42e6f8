package steward

import (
	"context"

	"github.com/xraph/forge"
)

// tenantScope names the tenant whose org chart and grants a check runs
// against. It only feeds audit entries; role lookups are already scoped
// because role ids are globally unique.
type tenantScope struct {
	appID    string
	tenantID string
}

// scopeFromContext reads the tenant scope from forge.Scope when the
// engine runs inside a Forge app, falling back to the WithTenant context
// keys in standalone mode. Both may be absent; an empty scope just
// produces unscoped audit rows.
func scopeFromContext(ctx context.Context) tenantScope {
	s, ok := forge.ScopeFrom(ctx)
	if ok {
		return tenantScope{
			appID:    s.AppID(),
			tenantID: s.OrgID(),
		}
	}
	return tenantScope{
		appID:    appIDFromContext(ctx),
		tenantID: tenantIDFromContext(ctx),
	}
}
