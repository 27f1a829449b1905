package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResults(w io.Writer, results []types.CheckResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Partition", "Rows", "Mode", "Valid Columns", "Status"})

	for _, r := range results {
		valid := "-"
		if r.Mode == "reconcile" {
			valid = strings.Join(r.ValidColumns, ", ")
		}
		t.AppendRow(table.Row{
			r.Database + "." + r.Table,
			r.PartitionKey + "=" + r.Partition,
			r.RowCount,
			r.Mode,
			valid,
			r.Status,
		})
	}
	t.Render()

	for _, r := range results {
		for _, iss := range r.Issues {
			_, _ = fmt.Fprintf(w, "[%s] %s.%s %s", iss.Severity, r.Database, r.Table, iss.Message)
			if iss.Column != "" {
				_, _ = fmt.Fprintf(w, " (%s)", iss.Column)
			}
			_, _ = fmt.Fprintln(w)
		}
	}
}

func renderTokens(w io.Writer, rules []ruleTokens, columns []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Tokens"})
	for _, r := range rules {
		t.AppendRow(table.Row{r.Name, strings.Join(r.Tokens, ", ")})
	}
	t.AppendFooter(table.Row{"columns", strings.Join(columns, ", ")})
	t.Render()
}
