// ABOUTME: Intent labels for classified user questions.
// ABOUTME: Closed set shared by the classifier, query engine, and chat session.
package models

// Intent is the kind of question a user asked.
type Intent string

const (
	IntentGetCurrent Intent = "get_current"
	IntentGetHistory Intent = "get_history"
	IntentCompare    Intent = "compare"
	IntentAdvice     Intent = "advice"
	IntentUnknown    Intent = "unknown"
)

// AllIntents lists the classifiable intents, excluding unknown.
var AllIntents = []Intent{IntentGetCurrent, IntentGetHistory, IntentCompare, IntentAdvice}

// IsValidIntent checks if a string names a classifiable intent.
func IsValidIntent(s string) bool {
	for _, i := range AllIntents {
		if string(i) == s {
			return true
		}
	}
	return false
}
