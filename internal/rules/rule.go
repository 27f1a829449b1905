package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoRules is returned when a rule document has no top-level rules key.
var ErrNoRules = errors.New("rule document has no rules key")

// Rule is a single DQDL-like constraint. Name is carried for reporting only.
type Rule struct {
	Name       string
	Expression string
}

type RuleSet struct {
	Rules []Rule
}

type ruleDoc struct {
	Rules *[]ruleEntry `yaml:"rules"`
}

// ruleEntry accepts both the catalog's capitalised keys and lower-case ones.
type ruleEntry struct {
	Name       string `yaml:"Name"`
	Expression string `yaml:"Expression"`
	LowerName  string `yaml:"name"`
	LowerExpr  string `yaml:"expression"`
}

// Parse reads a rule document in YAML or JSON form:
//
//	{"rules": [{"Name": "NonNullCheck", "Expression": "id IS NOT NULL"}]}
func Parse(data []byte) (*RuleSet, error) {
	var doc ruleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if doc.Rules == nil {
		return nil, ErrNoRules
	}

	rs := &RuleSet{Rules: make([]Rule, 0, len(*doc.Rules))}
	for _, e := range *doc.Rules {
		r := Rule{Name: e.Name, Expression: e.Expression}
		if r.Name == "" {
			r.Name = e.LowerName
		}
		if r.Expression == "" {
			r.Expression = e.LowerExpr
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}

func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}
