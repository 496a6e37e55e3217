package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgurr/pkg/checkpoint"
	"imgurr/pkg/config"
)

// forgetCmd removes the resume checkpoint
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete the checkpoint so a bare 'imgurr' no longer resumes",
	Args:  cobra.NoArgs,
	RunE:  runForget,
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}

func runForget(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	cp, err := checkpoint.NewManager(cfg.Checkpoint.Path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !cp.Exists() {
		fmt.Fprintf(out, "No checkpoint at %s\n", cp.Path())
		return nil
	}

	community, _ := cp.Load()
	if err := cp.Delete(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Forgot %s (%s)\n", community, cp.Path())
	return nil
}
