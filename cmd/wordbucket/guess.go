package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	guessCorpus   []string
	guessSnapshot string
	guessScores   bool
)

var guessCmd = &cobra.Command{
	Use:   "guess <text...>",
	Short: "Print the winning labels of a text, one per line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshotPath := guessSnapshot
		if snapshotPath == "" {
			snapshotPath = appConfig.Server.SnapshotPath
		}
		classifier, err := buildClassifier(cmd.Context(), appConfig, source{
			corpusPaths:  guessCorpus,
			snapshotPath: snapshotPath,
		})
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		out := cmd.OutOrStdout()
		if guessScores {
			for _, s := range classifier.GuessScores(text) {
				fmt.Fprintf(out, "%s\t%d\n", s.Label, s.Count)
			}
			return nil
		}
		for _, label := range classifier.Guess(text) {
			fmt.Fprintln(out, label)
		}
		return nil
	},
}

func init() {
	guessCmd.Flags().StringSliceVar(&guessCorpus, "corpus", nil, "corpus files or directories to train first")
	guessCmd.Flags().StringVar(&guessSnapshot, "snapshot", "", "snapshot to restore (default server.snapshot_path)")
	guessCmd.Flags().BoolVar(&guessScores, "scores", false, "print the whole ranking with totals")
}
