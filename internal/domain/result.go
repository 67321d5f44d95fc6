package domain

// DecodeStats summarizes a companion backfill run.
type DecodeStats struct {
	Discovered       int `json:"discovered"`
	ExcludedCategory int `json:"excluded_category"`
	AlreadySatisfied int `json:"already_satisfied"`
	Succeeded        int `json:"succeeded"`
	Skipped          int `json:"skipped"`
	ErrorCount       int `json:"error_count"`
}

// DecodeFailure records one fixture whose decode did not produce a companion.
type DecodeFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Output string `json:"output,omitempty"`
}
