package rules

import (
	"regexp"
	"strings"

	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order. Comparison operators are dropped, conjunctions become
// separators. Keywords are upper-case and word-bounded so identifiers such as
// "brand" or "HANDLE" are left alone.
var substitutions = []substitution{
	{regexp.MustCompile(`\bIS\s+NOT\s+NULL\b`), " "},
	{regexp.MustCompile(`>`), " "},
	{regexp.MustCompile(`<`), " "},
	{regexp.MustCompile(`=`), " "},
	{regexp.MustCompile(`\bAND\b`), ","},
	{regexp.MustCompile(`\bBETWEEN\b`), ","},
}

// Tokenize returns the candidate column identifiers in expr, in the order they
// appear. The scan is permissive: it has no notion of literals, so numbers
// and other fragments come back as tokens too. Callers are expected to filter
// the result against a real schema. It never fails.
func Tokenize(expr string) []string {
	for _, s := range substitutions {
		expr = s.pattern.ReplaceAllString(expr, s.replacement)
	}

	var tokens []string
	for _, fragment := range strings.Split(expr, ",") {
		for _, tok := range strings.Fields(fragment) {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// ExtractColumns unions the tokens of every rule expression. A nil rule set
// yields an empty set.
func ExtractColumns(rs *RuleSet) types.ColumnSet {
	cols := types.ColumnSet{}
	if rs == nil {
		return cols
	}
	for _, r := range rs.Rules {
		for _, tok := range Tokenize(r.Expression) {
			cols.Add(tok)
		}
	}
	return cols
}
