// Package middleware provides HTTP access control middleware for Steward.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

// PrincipalResolver extracts the acting principal from a request context.
type PrincipalResolver func(ctx forge.Context) steward.Principal

// Require enforces page-level access. It resolves the principal from the
// request and checks whether the principal's role grants the action on
// the page.
func Require(eng *steward.Engine, page, action string, resolvers ...PrincipalResolver) forge.Middleware {
	resolve := pickResolver(resolvers)
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal := resolve(ctx)
			if err := eng.Enforce(ctx.Context(), principal, page, action); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the page/action checks pass.
func RequireAny(eng *steward.Engine, checks []steward.CheckRequest, resolvers ...PrincipalResolver) forge.Middleware {
	resolve := pickResolver(resolvers)
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal := resolve(ctx)
			for i := range checks {
				result, err := eng.Can(ctx.Context(), principal, checks[i].Page, checks[i].Action)
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL page/action checks pass.
func RequireAll(eng *steward.Engine, checks []steward.CheckRequest, resolvers ...PrincipalResolver) forge.Middleware {
	resolve := pickResolver(resolvers)
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal := resolve(ctx)
			for i := range checks {
				if err := eng.Enforce(ctx.Context(), principal, checks[i].Page, checks[i].Action); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// RequireRecord enforces record-level access. The record owner is loaded
// by the supplied function, typically a store lookup keyed on a path
// parameter.
func RequireRecord(eng *steward.Engine, page string, loadRecord func(ctx forge.Context) (steward.Record, error), resolvers ...PrincipalResolver) forge.Middleware {
	resolve := pickResolver(resolvers)
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal := resolve(ctx)
			rec, err := loadRecord(ctx)
			if err != nil {
				return denyResponse(ctx)
			}
			result, err := eng.CanAccessRecord(ctx.Context(), principal, page, rec)
			if err != nil || !result.Allowed {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

func pickResolver(resolvers []PrincipalResolver) PrincipalResolver {
	if len(resolvers) > 0 && resolvers[0] != nil {
		return resolvers[0]
	}
	return resolvePrincipal
}

// resolvePrincipal extracts the principal from context.
// Priority: principal stored by steward.WithPrincipal (set by the
// authentication layer) → Forge user ID (from Authsome) → anonymous.
func resolvePrincipal(ctx forge.Context) steward.Principal {
	if p, ok := steward.PrincipalFromContext(ctx.Context()); ok {
		return p
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return steward.Principal{UserID: userID}
	}
	return steward.Principal{}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
