package steward

import (
	"context"
	"strings"
)

// Cache stores check decisions keyed by principal and permission. The
// engine treats every cache operation as best-effort: a cache failure
// never fails a check.
type Cache interface {
	Get(ctx context.Context, key string) (CheckResult, bool)
	Set(ctx context.Context, key string, result CheckResult)
	InvalidateTenant(ctx context.Context, tenantID string)
	InvalidateRole(ctx context.Context, roleID string)
	Clear(ctx context.Context)
}

// CacheKey builds the canonical cache key for a check. The tenant and
// role segments lead the key so invalidation can match on prefix.
func CacheKey(tenantID, roleID, userID, page, action string) string {
	var b strings.Builder
	b.Grow(len(tenantID) + len(roleID) + len(userID) + len(page) + len(action) + 4)
	b.WriteString(tenantID)
	b.WriteByte(':')
	b.WriteString(roleID)
	b.WriteByte(':')
	b.WriteString(userID)
	b.WriteByte(':')
	b.WriteString(page)
	b.WriteByte(':')
	b.WriteString(action)
	return b.String()
}
