package main

import (
	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/partwatch/internal/rules"
)

type ruleTokens struct {
	Name   string   `json:"name"`
	Tokens []string `json:"tokens"`
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <rules-file>",
		Short: "Print the column candidates referenced by a rule document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.Load(args[0])
			if err != nil {
				return err
			}

			perRule := make([]ruleTokens, 0, len(rs.Rules))
			for _, r := range rs.Rules {
				perRule = append(perRule, ruleTokens{Name: r.Name, Tokens: rules.Tokenize(r.Expression)})
			}
			columns := rules.ExtractColumns(rs).Sorted()

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"rules":   perRule,
					"columns": columns,
				})
			}
			renderTokens(cmd.OutOrStdout(), perRule, columns)
			return nil
		},
	}
}
