package main

import (
	"os"

	"github.com/bastiangx/wordbucket/internal/cli"
	"github.com/bastiangx/wordbucket/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	replCorpus   []string
	replSnapshot string
	replLimit    int
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive learn and guess loop for debugging",
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := buildClassifier(cmd.Context(), appConfig, source{
			corpusPaths:  replCorpus,
			snapshotPath: replSnapshot,
		})
		if err != nil {
			return err
		}

		limit := appConfig.CLI.ScoreLimit
		if replLimit > 0 {
			limit = replLimit
		}
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", limit, "labels", len(classifier.Labels()))

		out := logger.Console(os.Stdout, "")
		out.SetLevel(log.InfoLevel)
		return cli.NewInputHandler(classifier, os.Stdin, out, limit).Start()
	},
}

func init() {
	replCmd.Flags().StringSliceVar(&replCorpus, "corpus", nil, "corpus files or directories to train first")
	replCmd.Flags().StringVar(&replSnapshot, "snapshot", "", "snapshot to restore first")
	replCmd.Flags().IntVar(&replLimit, "limit", 0, "number of scores to print (default from config)")
}
