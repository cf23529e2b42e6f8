package api

// CheckResponse is the response for an access check.
type CheckResponse struct {
	Allowed    bool   `json:"allowed" description:"Whether the request is allowed"`
	Decision   string `json:"decision" description:"Decision code"`
	Scope      string `json:"scope,omitempty" description:"Scope that granted access"`
	Reason     string `json:"reason,omitempty" description:"Human-readable reason"`
	EvalTimeNs int64  `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// BatchCheckResponse contains results for multiple checks.
type BatchCheckResponse struct {
	Results []CheckResponse `json:"results" description:"Check results in order"`
}

// MatrixPage describes one page of the permission matrix catalog.
type MatrixPage struct {
	Page    string   `json:"page" description:"Page name"`
	Actions []string `json:"actions" description:"Action tokens valid for the page"`
}

// MatrixResponse is the permission matrix catalog.
type MatrixResponse struct {
	Pages []MatrixPage `json:"pages" description:"Pages in display order"`
}

// PurgeResponse reports how many entries a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted" description:"Number of entries deleted"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
