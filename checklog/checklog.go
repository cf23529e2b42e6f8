// Package checklog defines the check audit log Entry entity.
package checklog

import (
	"time"

	"github.com/xraph/steward/id"
)

// Entry is a single access-decision audit record.
type Entry struct {
	ID         id.CheckLogID  `json:"id" db:"id"`
	TenantID   string         `json:"tenant_id" db:"tenant_id"`
	AppID      string         `json:"app_id" db:"app_id"`
	RoleID     string         `json:"role_id" db:"role_id"`
	UserID     string         `json:"user_id,omitempty" db:"user_id"`
	Page       string         `json:"page" db:"page"`
	Action     string         `json:"action" db:"action"`
	Decision   string         `json:"decision" db:"decision"`
	Scope      string         `json:"scope,omitempty" db:"scope"`
	Reason     string         `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64          `json:"eval_time_ns" db:"eval_time_ns"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying check logs.
type QueryFilter struct {
	TenantID string     `json:"tenant_id,omitempty"`
	RoleID   string     `json:"role_id,omitempty"`
	UserID   string     `json:"user_id,omitempty"`
	Page     string     `json:"page,omitempty"`
	Action   string     `json:"action,omitempty"`
	Decision string     `json:"decision,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}
