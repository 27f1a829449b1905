package report

// Severity rules:
// - WARN when rules and table disagree or the schema could not be fetched
// - INFO for expected outcomes

const (
	SeverityInfo = "INFO"
	SeverityWarn = "WARN"
)

// Issue kinds.
const (
	KindCountOnly          = "count_only"
	KindSchemaLookupFailed = "schema_lookup_failed"
	KindNoMatchingColumns  = "no_matching_columns"
	KindRuleColumnMissing  = "rule_column_missing"
)

func SeverityForKind(kind string) string {
	switch kind {
	case KindSchemaLookupFailed, KindNoMatchingColumns, KindRuleColumnMissing:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

// MessageForKind returns a concise message for the given issue kind.
func MessageForKind(kind string) string {
	switch kind {
	case KindCountOnly:
		return "row count only"
	case KindSchemaLookupFailed:
		return "table schema could not be fetched; valid column set is empty"
	case KindNoMatchingColumns:
		return "no rule column is present in the table schema"
	case KindRuleColumnMissing:
		return "referenced by a rule but missing from the table schema"
	default:
		return ""
	}
}

func rank(severity string) int {
	if severity == SeverityWarn {
		return 1
	}
	return 0
}
