package main

import (
	"fmt"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/spf13/cobra"
)

var (
	dumpCorpus   []string
	dumpSnapshot string
	dumpPrefix   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the frequency table as word<TAB>label<TAB>count lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshotPath := dumpSnapshot
		if snapshotPath == "" {
			snapshotPath = appConfig.Server.SnapshotPath
		}
		classifier, err := buildClassifier(cmd.Context(), appConfig, source{
			corpusPaths:  dumpCorpus,
			snapshotPath: snapshotPath,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range classifier.DumpPrefix(bucket.Normalize(dumpPrefix)) {
			fmt.Fprintf(out, "%s\t%s\t%d\n", e.Word, e.Label, e.Count)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringSliceVar(&dumpCorpus, "corpus", nil, "corpus files or directories to train first")
	dumpCmd.Flags().StringVar(&dumpSnapshot, "snapshot", "", "snapshot to restore (default server.snapshot_path)")
	dumpCmd.Flags().StringVarP(&dumpPrefix, "prefix", "p", "", "only words starting with prefix")
}
