package report

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alexanderjulianmartinez/partwatch/internal/inspect"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

const StatusOK = "OK"

type Issue struct {
	Kind     string
	Table    string
	Column   string
	Severity string
	Message  string
}

type Report struct {
	Issues []Issue
}

// Status is the highest severity among the issues, or OK when nothing is
// above INFO.
func (r *Report) Status() string {
	worst := ""
	for _, iss := range r.Issues {
		if rank(iss.Severity) > rank(worst) {
			worst = iss.Severity
		}
	}
	if worst == "" {
		return StatusOK
	}
	return worst
}

// identifier filters out literals the rule scanner lets through.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func newIssue(kind, table, column string) Issue {
	return Issue{
		Kind:     kind,
		Table:    table,
		Column:   column,
		Severity: SeverityForKind(kind),
		Message:  MessageForKind(kind),
	}
}

// Build derives the issues of one inspection.
func Build(res *inspect.Result) *Report {
	rep := &Report{}
	table := res.Partition.Database + "." + res.Partition.Table

	if res.Mode == inspect.ModeCountOnly {
		iss := newIssue(KindCountOnly, table, "")
		iss.Message = fmt.Sprintf("%s: %d rows (threshold %d)", iss.Message, res.RowCount, res.Threshold)
		rep.Issues = append(rep.Issues, iss)
		return rep
	}

	if !res.Schema.OK() {
		iss := newIssue(KindSchemaLookupFailed, table, "")
		if res.Schema.Err != nil {
			iss.Message = fmt.Sprintf("%s: %v", iss.Message, res.Schema.Err)
		}
		rep.Issues = append(rep.Issues, iss)
		return rep
	}

	if res.Valid.Len() == 0 {
		rep.Issues = append(rep.Issues, newIssue(KindNoMatchingColumns, table, ""))
	}
	for _, col := range res.Extracted.Sorted() {
		if identifier.MatchString(col) && !res.Schema.Columns.Has(col) {
			rep.Issues = append(rep.Issues, newIssue(KindRuleColumnMissing, table, col))
		}
	}
	return rep
}

// CheckResult flattens an inspection and its report.
func CheckResult(res *inspect.Result, rep *Report, checkedAt time.Time) types.CheckResult {
	out := types.CheckResult{
		RunID:        res.RunID,
		Database:     res.Partition.Database,
		Table:        res.Partition.Table,
		PartitionKey: res.Partition.KeyOrDefault(),
		Partition:    res.Partition.Value,
		RowCount:     res.RowCount,
		Threshold:    res.Threshold,
		Mode:         string(res.Mode),
		Status:       rep.Status(),
		CheckedAt:    checkedAt.UTC(),
	}
	if res.Mode == inspect.ModeReconcile {
		out.SchemaStatus = string(res.Schema.Status)
		out.Extracted = res.Extracted.Sorted()
		out.ValidColumns = res.Valid.Sorted()
	}
	for _, iss := range rep.Issues {
		out.Issues = append(out.Issues, types.Issue{
			Kind:     iss.Kind,
			Severity: iss.Severity,
			Column:   iss.Column,
			Message:  iss.Message,
		})
	}
	return out
}
