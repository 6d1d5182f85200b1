package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kivisql/kivi/repl"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Run with an interactive console session",
		RunE:  replRun,
	}
)

func init() {
	initServerFlags(replCmd.Flags())

	kiviCmd.AddCommand(replCmd)
}

func replRun(cmd *cobra.Command, args []string) error {
	svr, err := newServer(args)
	if err != nil {
		return err
	}

	if len(args) == 0 && len(sqlArgs) == 0 {
		repl.Interact(svr.Store)
	}
	return nil
}
