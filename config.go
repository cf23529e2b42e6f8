package steward

import "time"

// Config holds configuration for the Steward engine.
type Config struct {
	// MaxGraphDepth is the maximum depth for reporting graph traversal.
	// Defaults to 10. Real org charts are shallow; the limit is a guard
	// against corrupted data, not a tuning knob.
	MaxGraphDepth int `json:"max_graph_depth,omitempty"`

	// CacheTTL is the time-to-live for cached check results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// AuditDecisions enables writing a check log entry for every decision.
	// Defaults to false.
	AuditDecisions bool `json:"audit_decisions,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxGraphDepth: 10,
	}
}
