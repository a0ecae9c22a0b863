/*
Package main implements the wordbucket classifier server and CLI [DBG] application.

wordbucket learns which words show up under which labels and guesses the label
of new text by summing those counts. It can run as a MessagePack IPC server for
other programs, as an interactive REPL for debugging, or as one-shot commands
that train, guess and dump from the shell.

# Usage

Train a snapshot from a corpus directory:

	wordbucket train corpus/ --out table.msgpack

Serve guesses over stdin/stdout from that snapshot, with metrics:

	wordbucket serve --snapshot table.msgpack --metrics-addr :9100

Explore the table interactively:

	wordbucket repl --corpus corpus/ -d

# Corpus

A corpus is a set of files or directories. Tab separated files hold one
label<TAB>text sample per line, TOML files hold [[sample]] tables, and every
.txt or .html document is one sample labeled with its parent directory name.

# Configuration

Runtime configuration is a TOML file created with defaults on first run at
~/.config/wordbucket/config.toml, or given with --config:

	[classifier]
	extra_stopwords = ["however"]
	stem = false
	cache_size = 256

	[server]
	max_text_len = 4096
	snapshot_path = ""
	autosave_every = 0

Flags given on the command line win over the file.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordbucket/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordbucket"
	gh      = "https://github.com/bastiangx/wordbucket"
)

var (
	configFlag    string
	debugMode     bool
	rebuildConfig bool

	appConfig  *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "Guess the label of a text from learned word counts",
	Long:          `wordbucket is a frequency based text classifier with a msgpack IPC server and a debugging REPL`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugMode {
			log.SetLevel(log.DebugLevel)
			log.SetReportTimestamp(true)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		return loadAppConfig(configFlag, rebuildConfig)
	},
}

// loadAppConfig sets appConfig and configPath, first rewriting the default
// config file with defaults when rebuild is set.
func loadAppConfig(customPath string, rebuild bool) error {
	if rebuild {
		if err := config.RebuildConfigFile(); err != nil {
			return fmt.Errorf("failed to rebuild config: %w", err)
		}
		log.Info("Rebuilt default config file")
	}

	cfg, path, err := config.LoadConfigWithPriority(customPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg
	configPath = path
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))
	return nil
}

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main registers the commands and runs the root command.
// It does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to a config.toml")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")
	rootCmd.PersistentFlags().BoolVar(&rebuildConfig, "rebuild-config", false, "rewrite the default config.toml with defaults before running")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(guessCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
