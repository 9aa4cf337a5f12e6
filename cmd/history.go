package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/color"
	"github.com/vodrip/vodrip/history"
	"github.com/vodrip/vodrip/icon"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/open"
	"github.com/vodrip/vodrip/style"
	"github.com/vodrip/vodrip/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("filter", "f", "", "Fuzzy filter by user, title or file name")
	historyCmd.Flags().BoolP("json", "j", false, "Print the records as JSON")
	historyCmd.Flags().IntP("limit", "n", 0, "Show at most this many records")
	historyCmd.Flags().Bool("open", false, "Open the newest matching video")

	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished downloads, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		records, err := history.List()
		handleErr(err)

		records = history.Filter(records, lo.Must(cmd.Flags().GetString("filter")))
		if limit := lo.Must(cmd.Flags().GetInt("limit")); limit > 0 {
			records = records[:util.Min(limit, len(records))]
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			if len(records) == 0 {
				handleErr(errors.New("no matching downloads"))
			}
			handleErr(open.StartWith(records[0].Output, viper.GetString(key.DownloaderOpenWith)))
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("No downloads recorded yet"))
			return
		}

		for _, record := range records {
			cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Download)), record)
			cmd.Println(style.Faint("  " + record.Output))
		}
	},
}
