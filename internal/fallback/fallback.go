// Package fallback is the degraded path: a regex-only extractor used when
// the model is unreachable or returned nothing parseable. It guarantees the
// pipeline always produces some structured result, with no causal inference
// attempted.
package fallback

import (
	"regexp"
	"strconv"
	"strings"

	"incidentparse/internal/incident"
	"incidentparse/internal/logging"
)

var (
	reFirstInt = regexp.MustCompile(`[0-9]+`)
	reClock    = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(AM|PM)\b`)
	reMeridiem = regexp.MustCompile(`(?i)\b(am|pm)\b`)
)

// Ordered component keywords; first containment match wins.
var componentKeywords = []struct {
	keyword string
	label   string
}{
	{"database", "Database"},
	{"api", "API"},
	{"load balancer", "Load Balancer"},
	{"server", "Server"},
}

// Extract builds a record from raw text without a model call.
func Extract(text string) incident.Record {
	logging.Fallback("heuristic extraction for text len=%d", len(text))

	impact := firstInt(text)

	return incident.Record{
		Severity:       severityFromImpact(impact),
		Component:      guessComponent(text),
		Timestamp:      extractClock(text),
		SuspectedCause: incident.Unknown,
		ImpactCount:    impact,
	}
}

// firstInt returns the first run of digits in text, else 0.
func firstInt(text string) int {
	m := reFirstInt.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// severityFromImpact applies the same thresholds the validator uses for
// consistency repair.
func severityFromImpact(impact int) incident.Severity {
	switch {
	case impact >= 500:
		return incident.SeverityHigh
	case impact >= 100:
		return incident.SeverityMed
	default:
		return incident.SeverityLow
	}
}

// extractClock matches the single restricted H[:MM] AM/PM pattern.
func extractClock(text string) string {
	m := reClock.FindString(text)
	if m == "" {
		return incident.Unknown
	}
	return reMeridiem.ReplaceAllStringFunc(m, strings.ToUpper)
}

// guessComponent does case-insensitive keyword containment in order.
func guessComponent(text string) string {
	lower := strings.ToLower(text)
	for _, c := range componentKeywords {
		if strings.Contains(lower, c.keyword) {
			return c.label
		}
	}
	return incident.Unknown
}
