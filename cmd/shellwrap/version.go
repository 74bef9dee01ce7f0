package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/shellwrap/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if verbose {
				_, err := fmt.Fprint(cmd.OutOrStdout(), info.Report(appName))
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), appName, info.Long())
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include build details")
	return cmd
}
