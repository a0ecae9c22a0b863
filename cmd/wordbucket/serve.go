package main

import (
	"context"
	"os"
	"time"

	"github.com/bastiangx/wordbucket/internal/logger"
	"github.com/bastiangx/wordbucket/pkg/server"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	serveCorpus      []string
	serveSnapshot    string
	serveMetricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve learn and guess requests as msgpack over stdin/stdout",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&serveCorpus, "corpus", nil, "corpus files or directories to train on startup")
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "snapshot to restore and save to (overrides server.snapshot_path)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "address to expose Prometheus metrics on (overrides server.metrics_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveSnapshot != "" {
		appConfig.Server.SnapshotPath = serveSnapshot
	}
	if serveMetricsAddr != "" {
		appConfig.Server.MetricsAddr = serveMetricsAddr
	}

	classifier, err := buildClassifier(cmd.Context(), appConfig, source{
		corpusPaths:  serveCorpus,
		snapshotPath: appConfig.Server.SnapshotPath,
		missingOK:    true,
	})
	if err != nil {
		return err
	}
	if appConfig.Server.SnapshotPath != "" {
		resolver, err := newPathResolver()
		if err != nil {
			return err
		}
		appConfig.Server.SnapshotPath = resolver.ResolvePath(appConfig.Server.SnapshotPath)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := server.NewMetrics(reg)
	if err != nil {
		return err
	}
	if addr := appConfig.Server.MetricsAddr; addr != "" {
		metricsSrv := server.ServeMetrics(addr, reg)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			metricsSrv.Shutdown(ctx)
		}()
	}

	showStartupInfo()

	srv := server.NewServer(classifier, appConfig, os.Stdin, os.Stdout, metrics)
	if err := srv.Start(); err != nil {
		return err
	}

	if path := appConfig.Server.SnapshotPath; path != "" && appConfig.Server.AutosaveEvery > 0 {
		if err := snapshot.Save(path, classifier); err != nil {
			log.Errorf("Final save failed: %v", err)
		}
	}
	return nil
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo() {
	l := logger.New(AppName)
	l.SetLevel(log.InfoLevel)

	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	if appConfig.Server.SnapshotPath != "" {
		l.Infof("snapshot: ( %s )", appConfig.Server.SnapshotPath)
	}
	if appConfig.Server.MetricsAddr != "" {
		l.Infof("metrics: ( %s/metrics )", appConfig.Server.MetricsAddr)
	}
	l.Info("status: ready")
}
