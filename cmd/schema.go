package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vodrip/vodrip/inline"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.SetOut(os.Stdout)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of `--list --json` output",
	Run: func(cmd *cobra.Command, args []string) {
		schema, err := inline.Schema()
		handleErr(err)
		cmd.Println(string(schema))
	},
}
