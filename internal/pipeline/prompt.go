package pipeline

import "strings"

// systemPrompt pins the model into extractor behavior before the field
// instructions arrive.
const systemPrompt = "You are a JSON data extractor. Always return ONLY valid JSON, no other text."

// SampleIncident is the demo report the presentation layer offers for
// one-click testing.
const SampleIncident = "Hey team, the production database US-East-I just timed out at 6:30 PM. " +
	"I think it's the migration script deployed by Sarah. Error code 503 showing up " +
	"on the load balancer. 500 users affected."

// BuildPrompt renders the extraction instruction for one incident report.
// Deterministic given the input text: the five target fields, the closed
// severity set, worked time-format examples, and a JSON-only demand.
func BuildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Extract the following fields from this incident report and return ONLY JSON:\n\n")
	sb.WriteString("Fields to extract:\n")
	sb.WriteString("1. Severity: Must be exactly \"High\", \"Med\", or \"Low\" based on impact\n")
	sb.WriteString("2. Component: The affected system component\n")
	sb.WriteString("3. Timestamp: Time mentioned (e.g. \"6:30 PM\", \"12:00 AM\", \"Morning\") or \"Unknown\"\n")
	sb.WriteString("4. Suspected_Cause: Short phrase describing likely cause\n")
	sb.WriteString("5. Impact_Count: Number of users affected (integer)\n\n")
	sb.WriteString("INCIDENT REPORT: ")
	sb.WriteString(text)
	sb.WriteString("\n\nRETURN ONLY THIS JSON FORMAT (no other text):\n")
	sb.WriteString(`{
    "Severity": "High",
    "Component": "Database",
    "Timestamp": "6:30 PM",
    "Suspected_Cause": "Migration script failure",
    "Impact_Count": 500
}`)
	sb.WriteString("\n\nImportant rules:\n")
	sb.WriteString("- Impact_Count must be a number, not text\n")
	sb.WriteString("- Severity must be \"High\", \"Med\", or \"Low\" only\n")
	sb.WriteString("- Return ONLY the JSON object, no explanations\n")

	return sb.String()
}
