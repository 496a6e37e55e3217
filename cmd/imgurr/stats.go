package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imgurr/pkg/config"
	"imgurr/pkg/errors"
	"imgurr/pkg/store"
	"imgurr/pkg/validate"
)

// statsCmd reports what has been collected for a community
var statsCmd = &cobra.Command{
	Use:   "stats /r/community",
	Short: "Show the record database for a community",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	community := args[0]
	if !validate.IsValidCommunityName(community) {
		return errors.New(errors.ErrorTypeInvalidName, "%q is not a community name like /r/pics", community)
	}

	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path := filepath.Join(cfg.Output.Directory, store.FileName(community))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(out, "No records for %s (%s does not exist)\n", community, path)
		return nil
	}

	st, err := store.Open(context.Background(), cfg.Output.Directory, community)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.Count(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Database: %s\n", st.Path())
	if info, err := os.Stat(st.Path()); err == nil {
		fmt.Fprintf(out, "Size:     %s\n", humanize.Bytes(uint64(info.Size())))
	}
	fmt.Fprintf(out, "Images:   %s\n", humanize.Comma(int64(count)))
	return nil
}
