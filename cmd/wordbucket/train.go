package main

import (
	"fmt"
	"path/filepath"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/spf13/cobra"
)

var trainOut string

var trainCmd = &cobra.Command{
	Use:   "train <corpus paths...>",
	Short: "Train on a corpus and write the table as a snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := buildClassifier(cmd.Context(), appConfig, source{corpusPaths: args})
		if err != nil {
			return err
		}
		out, err := outputPath(trainOut)
		if err != nil {
			return err
		}
		if err := snapshot.Save(out, classifier); err != nil {
			return err
		}

		stats := classifier.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s entries, %d labels, %s words\n",
			out, utils.FormatWithCommas(stats.Entries), stats.Labels, utils.FormatWithCommas(stats.Words))
		return nil
	},
}

// outputPath makes path absolute against the working directory.
// Outputs never go through the path resolver.
func outputPath(path string) (string, error) {
	out, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path %s: %w", path, err)
	}
	if utils.IsDir(out) {
		return "", fmt.Errorf("snapshot output %s is a directory", out)
	}
	return out, nil
}

func init() {
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "", "snapshot file to write")
	trainCmd.MarkFlagRequired("out")
}
