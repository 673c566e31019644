// Package incident defines the structured record produced by the parsing
// pipeline and the result envelope handed to presentation code.
package incident

// Unknown is the sentinel value for text fields that could not be extracted.
const Unknown = "Unknown"

// Severity is the closed set of incident severity levels.
type Severity string

const (
	SeverityHigh Severity = "High"
	SeverityMed  Severity = "Med"
	SeverityLow  Severity = "Low"
)

// Valid reports whether s is one of the three allowed severity values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMed, SeverityLow:
		return true
	}
	return false
}

// Record is the five-field structured output of the pipeline.
// After repair, Severity is always a valid enum value and ImpactCount is
// always non-negative.
type Record struct {
	Severity       Severity `json:"Severity"`
	Component      string   `json:"Component"`
	Timestamp      string   `json:"Timestamp"`
	SuspectedCause string   `json:"Suspected_Cause"`
	ImpactCount    int      `json:"Impact_Count"`
}

// Source identifies which path produced a record.
type Source string

const (
	// SourceModel marks records derived from the model response.
	SourceModel Source = "model"
	// SourceHeuristic marks records from the degraded regex-only path.
	SourceHeuristic Source = "heuristic"
)

// ErrorKind classifies errors surfaced directly to the caller.
// Transport and extraction failures never appear here; they degrade to the
// heuristic path instead.
type ErrorKind string

const (
	ErrorEmptyInput ErrorKind = "empty_input"
	ErrorConfig     ErrorKind = "config"
)

// ErrorResult carries a human-readable failure message and, where available,
// the raw unparsed model text for diagnostics.
type ErrorResult struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Raw     string    `json:"raw_response,omitempty"`
}

// Result is the pipeline output: either a fully-populated Record tagged with
// its source, or an ErrorResult. Never a partially-typed record.
type Result struct {
	Record *Record      `json:"record,omitempty"`
	Source Source       `json:"source,omitempty"`
	Raw    string       `json:"raw_response,omitempty"`
	Err    *ErrorResult `json:"error,omitempty"`
}

// IsError reports whether the result carries an error instead of a record.
func (r Result) IsError() bool {
	return r.Err != nil
}

// Degraded reports whether the record came from the heuristic fallback path.
func (r Result) Degraded() bool {
	return r.Source == SourceHeuristic
}
