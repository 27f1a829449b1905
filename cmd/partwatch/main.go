package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "partwatch error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:           "partwatch",
		Short:         "Partition inspection for data quality rules",
		Long:          "Counts a table partition and, for large partitions, reconciles the columns referenced by data quality rules against the table schema.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOutputFormat(output)
		},
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format: table or json")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "partwatch version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
