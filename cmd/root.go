// Package cmd implements the vodrip command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/color"
	"github.com/vodrip/vodrip/config"
	"github.com/vodrip/vodrip/constant"
	"github.com/vodrip/vodrip/download"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/history"
	"github.com/vodrip/vodrip/icon"
	"github.com/vodrip/vodrip/inline"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/open"
	"github.com/vodrip/vodrip/recent"
	"github.com/vodrip/vodrip/style"
	"github.com/vodrip/vodrip/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.Flags().BoolP("list", "l", false, "List the available qualities and exit")
	rootCmd.Flags().StringP("quality", "q", "", "Quality to download: 0 or \"source\" for the original file, n for the n-th compressed rendition (default 1)")
	rootCmd.MarkFlagsMutuallyExclusive("list", "quality")

	rootCmd.Flags().BoolP("json", "j", false, "With --list, print the listing as JSON")
	rootCmd.Flags().BoolP("interactive", "i", false, "Pick the quality from a menu")
	rootCmd.MarkFlagsMutuallyExclusive("interactive", "quality")

	rootCmd.Flags().Bool("open", false, "Open the video once it is downloaded")
	rootCmd.Flags().StringP("output", "o", "", "Directory to write the video to")
	lo.Must0(viper.BindPFlag(key.DownloaderOutputDir, rootCmd.Flags().Lookup("output")))

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant ("+strings.Join(icon.AvailableVariants(), ", ")+")")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Record finished downloads in the history")
	lo.Must0(viper.BindPFlag(key.HistorySave, rootCmd.PersistentFlags().Lookup("write-history")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify(context.Background(), network.New(network.FromConfig()))
	})
}

var rootCmd = &cobra.Command{
	Use:   constant.App + " <url>",
	Short: "Download archived livestream VODs",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Download archived livestream VODs"),
	Example: `  vodrip https://www.stream.me/archive/runner/any-percent --list
  vodrip https://www.stream.me/archive/runner/any-percent -q source -o ~/Videos`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return recent.Suggest(toComplete), cobra.ShellCompDirectiveNoFileComp
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if lo.Must(cmd.Flags().GetBool("json")) && !lo.Must(cmd.Flags().GetBool("list")) {
			return errors.New("--json can only be used together with --list")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		view := newProgressView()
		pipeline := download.FromConfig(network.New(network.FromConfig()))
		pipeline.Observer = view

		target, err := pipeline.Resolve(ctx, args[0])
		handleErr(err)

		if err := recent.Remember(target.URL, 1); err != nil {
			log.Warnf("remembering url: %v", err)
		}

		if lo.Must(cmd.Flags().GetBool("list")) {
			handleErr(list(ctx, cmd, pipeline, target))
			return
		}

		selection, err := chooseSelection(ctx, cmd, pipeline, target)
		handleErr(err)

		started := time.Now()
		job, err := pipeline.Download(ctx, target.Renditions, selection, config.OutputDir())
		view.clear()
		handleErr(err)

		remember(target, job, started)
		fmt.Printf(
			"%s Saved %s %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Bold(job.Output),
			style.Faint(fmt.Sprintf("(%s)", time.Since(started).Round(time.Second))),
		)

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.StartWith(job.Output, viper.GetString(key.DownloaderOpenWith)))
		}
	},
}

func list(ctx context.Context, cmd *cobra.Command, pipeline *download.Pipeline, target *download.Target) error {
	entries, err := pipeline.List(ctx, target.Renditions)
	if err != nil {
		return err
	}

	if lo.Must(cmd.Flags().GetBool("json")) {
		return inline.Write(cmd.OutOrStdout(), inline.NewOutput(target, entries))
	}

	for _, entry := range entries {
		cmd.Println(entry)
	}
	return nil
}

// chooseSelection reads --quality, asks interactively, or falls back to the configured default.
func chooseSelection(ctx context.Context, cmd *cobra.Command, pipeline *download.Pipeline, target *download.Target) (download.Selection, error) {
	if cmd.Flags().Changed("quality") {
		return download.ParseSelection(lo.Must(cmd.Flags().GetString("quality")))
	}

	if !lo.Must(cmd.Flags().GetBool("interactive")) {
		return download.Selection(viper.GetInt(key.DownloaderDefaultQuality)), nil
	}

	entries, err := pipeline.List(ctx, target.Renditions)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: no renditions available", download.ErrInvalidSelection)
	}

	var chosen int
	err = survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("Quality for %s", target.Context.VOD.Title),
		Options: lo.Map(entries, func(e *download.Entry, _ int) string { return e.String() }),
	}, &chosen)
	if err != nil {
		return 0, err
	}

	return entries[chosen].Selection, nil
}

// remember records a finished job in the history. Failures are logged only.
func remember(target *download.Target, job *download.Job, started time.Time) {
	if !viper.GetBool(key.HistorySave) {
		return
	}

	var size int64
	if info, err := filesystem.API().Stat(job.Output); err == nil {
		size = info.Size()
	}

	record := &history.Record{
		ID:          job.ID.String(),
		URL:         target.URL,
		User:        target.Context.VOD.UserSlug,
		Title:       target.Context.VOD.Title,
		Quality:     job.Rendition.Resolution(),
		Output:      job.Output,
		Bytes:       size,
		Segments:    len(job.Segments),
		CompletedAt: time.Now(),
	}

	if err := history.Save(record); err != nil {
		log.Warnf("saving history: %v", err)
		return
	}
	log.With(log.Fields{"job": record.ID, "elapsed": time.Since(started).String()}).Info("history saved")
}

// Execute runs the command tree.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Warn), "interrupted")
		os.Exit(130)
	}

	if errors.Is(err, download.ErrInvalidSelection) {
		log.Warn(err)
	} else {
		log.Error(err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), strings.Trim(err.Error(), " \n"))
	os.Exit(1)
}
