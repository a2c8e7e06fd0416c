package model

import "time"

// Verdict is the outcome of classifying one lead against a target
// service type. A retry produces a new Verdict; verdicts are never
// mutated after creation.
type Verdict struct {
	BusinessName      string  `json:"business_name"`
	Category          string  `json:"category,omitempty"`
	IsServiceProvider bool    `json:"is_service_provider"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
	ModelUsed         string  `json:"model_used,omitempty"`
	FallbackUsed      bool    `json:"fallback_used,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// Exclusion records a lead that was filtered out and why.
type Exclusion struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Address string `json:"address,omitempty"`
}

// BatchResult partitions a batch of leads. Every input lead lands in
// exactly one of the two lists, in input order.
type BatchResult struct {
	FilteredLeads      []Lead      `json:"filtered_leads"`
	ExcludedBusinesses []Exclusion `json:"excluded_businesses"`
}

// Summary aggregates a classification pass.
type Summary struct {
	Total              int     `json:"total"`
	Included           int     `json:"included"`
	Excluded           int     `json:"excluded"`
	InclusionRate      float64 `json:"inclusion_rate"`
	AvgConfidence      float64 `json:"avg_confidence"`
	LowConfidenceCount int     `json:"low_confidence_count"`
	ErrorCount         int     `json:"error_count"`
	FallbackCount      int     `json:"fallback_count"`
}

// RunStatus tracks a filter run's lifecycle in the store.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// FilterRun is a persisted record of one filtering invocation.
type FilterRun struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"service_type"`
	Mode        string    `json:"mode"`
	Status      RunStatus `json:"status"`
	Summary     *Summary  `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
