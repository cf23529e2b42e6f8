package checklog

import (
	"context"
	"time"

	"github.com/xraph/steward/id"
)

// Store persists the decision audit trail. Writes happen on the check
// hot path, so implementations should favor append speed; reads are
// rare (compliance queries and retention purges).
type Store interface {
	// CreateCheckLog appends one decision to the trail.
	CreateCheckLog(ctx context.Context, e *Entry) error

	// GetCheckLog retrieves a single entry by ID.
	GetCheckLog(ctx context.Context, logID id.CheckLogID) (*Entry, error)

	// ListCheckLogs returns entries matching the filter, newest first.
	ListCheckLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountCheckLogs returns the number of entries matching the filter,
	// ignoring the filter's pagination fields.
	CountCheckLogs(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeCheckLogs removes entries older than the given time and
	// reports how many were deleted.
	PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error)

	// DeleteCheckLogsByTenant removes the whole trail for a tenant,
	// used by tenant offboarding.
	DeleteCheckLogsByTenant(ctx context.Context, tenantID string) error
}
