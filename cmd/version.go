package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kivisql/kivi/sql"
)

func init() {
	kiviCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of Kivi",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(sql.Version())
			},
		})
}
