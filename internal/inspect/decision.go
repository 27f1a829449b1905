package inspect

import "github.com/alexanderjulianmartinez/partwatch/internal/rules"

// DefaultThreshold is the row count above which a partition gets a column
// inspection instead of a bare count.
const DefaultThreshold int64 = 100_000

type Mode string

const (
	ModeCountOnly Mode = "count_only"
	ModeReconcile Mode = "reconcile"
)

// Decide picks the inspection mode. Reconcile needs both a rule set and a
// count strictly above the threshold.
func Decide(rowCount, threshold int64, rs *rules.RuleSet) Mode {
	if rs == nil || rowCount <= threshold {
		return ModeCountOnly
	}
	return ModeReconcile
}
