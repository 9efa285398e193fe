package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/ooxverify/internal/oox/fixtures"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List the bundled OOX programs verify --fixture can name",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range fixtures.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
}
