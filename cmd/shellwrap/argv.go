package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/shellwrap/cmdline"
	"github.com/kbukum/shellwrap/shellwrap"
)

type argvFlags struct {
	paramFlags

	subcommands []string
	asJSON      bool
}

func newArgvCmd() *cobra.Command {
	f := &argvFlags{}
	cmd := &cobra.Command{
		Use:   "argv [flags] -- command [args...]",
		Short: "Print the argument vector a run would use",
		Example: `  shellwrap argv -p color=auto -f l -- ls /tmp
  shellwrap argv -f q -s update -- cvs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			named, err := f.named()
			if err != nil {
				return err
			}
			argv, err := f.build(args, named)
			if err != nil {
				return err
			}
			return printArgv(cmd, argv, f.asJSON)
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVarP(&f.subcommands, "subcommand", "s", nil, "nested subcommand appended after the arguments (repeatable)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print a JSON array")
	return cmd
}

// build resolves the argument vector without launching anything. Execution
// options among the parameters are validated and dropped.
func (f *argvFlags) build(args []string, named cmdline.Params) ([]string, error) {
	h := shellwrap.Create(args[0], args[1:], named)
	for _, sub := range f.subcommands {
		h = h.Subcommand(sub, nil, nil)
	}
	_, argv, err := h.Prepare(nil, nil)
	return argv, err
}

func printArgv(cmd *cobra.Command, argv []string, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return json.NewEncoder(out).Encode(argv)
	}
	for _, a := range argv {
		if _, err := fmt.Fprintln(out, a); err != nil {
			return err
		}
	}
	return nil
}
