package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"imgurr/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile     string
	logLevel       string
	outputDir      string
	checkpointFile string
	metricsFile    string
	quiet          bool
	notifications  bool
	preserveMtime  bool
	maxAttempts    int
)

// rootCmd crawls a community when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "imgurr [/r/community [page]]",
	Short: "Download every image in a community's gallery feed",
	Long: `imgurr walks the gallery feed of a community page by page and downloads
each image once, recording its metadata in a sqlite database next to the files.

With no arguments the community saved in the checkpoint by the previous run
is crawled again from page 0. Images already recorded are skipped, so an
interrupted crawl can simply be restarted.`,
	Example: `  # Crawl a community from the first page
  imgurr /r/EarthPorn

  # Start at page 12
  imgurr /r/EarthPorn 12

  # Resume the community from the last run
  imgurr

  # Retry dropped pages forever and keep feed timestamps on the files
  imgurr /r/EarthPorn --max-attempts 0 --preserve-mtime`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	RunE:          runCrawl,
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionText())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func versionText() string {
	return `imgurr ` + rootCmd.Version + `
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.imgurr.yaml or ~/.config/imgurr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "directory for images and the record database")
	rootCmd.PersistentFlags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint file (default is in the user data directory)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file when the run ends")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVar(&preserveMtime, "preserve-mtime", false, "set file times from the feed's created timestamp")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 3, "attempts per page before giving up (0 retries forever)")

	rootCmd.SetVersionTemplate(`{{printf "imgurr %s\n" .Version}}`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

// commandLineFlags collects the flags the user actually set, for config.Load
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if outputDir != "" {
		flags["output"] = outputDir
	}
	if checkpointFile != "" {
		flags["checkpoint"] = checkpointFile
	}
	if metricsFile != "" {
		flags["metrics-file"] = metricsFile
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if quiet && logLevel == "" {
		flags["log-level"] = "error"
	}
	if changed("max-attempts") {
		flags["max-attempts"] = maxAttempts
	}
	if changed("preserve-mtime") {
		flags["preserve-mtime"] = preserveMtime
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	return flags
}
