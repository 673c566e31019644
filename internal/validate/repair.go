// Package validate coerces an arbitrary parsed JSON object into the fixed
// five-field incident record. This stage never fails: missing fields get
// defaults, types are coerced, and internally inconsistent values are
// repaired. Every input converges to a valid record.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"incidentparse/internal/incident"
	"incidentparse/internal/logging"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// Repair builds a fully-populated record from obj, using sourceText for
// secondary timestamp extraction when the model left it Unknown.
func Repair(obj map[string]interface{}, sourceText string) incident.Record {
	rec := incident.Record{
		Severity:       incident.Severity(textField(obj, "Severity")),
		Component:      textField(obj, "Component"),
		Timestamp:      textField(obj, "Timestamp"),
		SuspectedCause: textField(obj, "Suspected_Cause"),
		ImpactCount:    coerceImpact(obj["Impact_Count"]),
	}

	if !rec.Severity.Valid() {
		logging.ValidateDebug("severity %q outside enum, defaulting to Med", rec.Severity)
		rec.Severity = incident.SeverityMed
	}

	rec.Severity = repairSeverity(rec.Severity, rec.ImpactCount)

	if rec.Timestamp == incident.Unknown {
		if ts := ExtractTimestamp(sourceText); ts != "" {
			logging.ValidateDebug("recovered timestamp %q from source text", ts)
			rec.Timestamp = ts
		}
	}
	if rec.Timestamp != incident.Unknown {
		rec.Timestamp = stripHedge(rec.Timestamp)
	}

	return rec
}

// textField extracts a non-empty string field, defaulting to Unknown.
func textField(obj map[string]interface{}, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return incident.Unknown
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return incident.Unknown
	}
	return strings.TrimSpace(s)
}

// coerceImpact turns whatever the model put in Impact_Count into a
// non-negative integer. Numeric values are truncated; strings are scraped
// for their first digit run; everything else is 0.
func coerceImpact(v interface{}) int {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case int:
		if n < 0 {
			return 0
		}
		return n
	case string:
		m := digitRun.FindString(n)
		if m == "" {
			return 0
		}
		count, err := strconv.Atoi(m)
		if err != nil {
			return 0
		}
		return count
	default:
		return 0
	}
}

// repairSeverity applies the severity/impact consistency rules in precedence
// order. The rules deliberately do not cover every combination: High with an
// impact in [100,500) is left as-is.
func repairSeverity(sev incident.Severity, impact int) incident.Severity {
	switch {
	case impact >= 500:
		return incident.SeverityHigh
	case impact >= 100 && sev == incident.SeverityLow:
		return incident.SeverityMed
	case impact < 100 && sev == incident.SeverityHigh:
		return incident.SeverityMed
	}
	return sev
}

// Time-expression patterns in priority order. The first match wins.
var (
	reClockMeridiem = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:AM|PM)\b`)
	reHourMeridiem  = regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:AM|PM)\b`)
	reAtHour        = regexp.MustCompile(`(?i)\bat\s+\d{1,2}(?::\d{2})?\b`)
	reOClock        = regexp.MustCompile(`(?i)\b\d{1,2}\s*o'clock\b`)
	reNoonMidnight  = regexp.MustCompile(`(?i)\b(?:noon|midnight)\b`)
	reRelativeTime  = regexp.MustCompile(`(?i)\b(?:morning|afternoon|evening|night)\b`)
	reRelativeDay   = regexp.MustCompile(`(?i)\b(?:today|yesterday|tomorrow)\b`)

	reMeridiem = regexp.MustCompile(`(?i)\b(am|pm)\b`)
	reHedge    = regexp.MustCompile(`(?i)^(?:at|around|about|approximately)\s+`)
)

// ExtractTimestamp scans text for a time expression, trying exact clock
// forms before looser relative terms. Returns "" when nothing matches.
func ExtractTimestamp(text string) string {
	if m := reClockMeridiem.FindString(text); m != "" {
		return upperMeridiem(m)
	}
	if m := reHourMeridiem.FindString(text); m != "" {
		return upperMeridiem(m)
	}
	if m := reAtHour.FindString(text); m != "" {
		return m
	}
	if m := reOClock.FindString(text); m != "" {
		return m
	}
	if m := reNoonMidnight.FindString(text); m != "" {
		if strings.EqualFold(m, "noon") {
			return "12:00 PM"
		}
		return "12:00 AM"
	}
	if m := reRelativeTime.FindString(text); m != "" {
		return titleCase(m)
	}
	if m := reRelativeDay.FindString(text); m != "" {
		return titleCase(m)
	}
	return ""
}

// upperMeridiem normalizes the AM/PM part of a matched time to upper case.
func upperMeridiem(s string) string {
	return reMeridiem.ReplaceAllStringFunc(s, strings.ToUpper)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// stripHedge removes leading hedge words ("at 6:30 PM" -> "6:30 PM").
func stripHedge(ts string) string {
	return strings.TrimSpace(reHedge.ReplaceAllString(ts, ""))
}
