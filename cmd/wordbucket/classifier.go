package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/bastiangx/wordbucket/pkg/config"
	"github.com/bastiangx/wordbucket/pkg/corpus"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/charmbracelet/log"
)

// source says where a classifier's table comes from
type source struct {
	corpusPaths  []string
	snapshotPath string
	// missingOK starts from an empty table when the snapshot does not exist yet
	missingOK bool
}

// newPathResolver resolves user paths against the active config dir
func newPathResolver() (*utils.PathResolver, error) {
	configDir := ""
	if configPath != "" {
		configDir = filepath.Dir(configPath)
	} else if dir, err := config.GetConfigDir(); err == nil {
		configDir = dir
	}
	resolver, err := utils.NewPathResolver(configDir)
	if err != nil {
		return nil, err
	}
	log.Debug("Runtime", "info", resolver.GetRuntimeInfo())
	return resolver, nil
}

// buildClassifier creates a classifier from the config, restores the snapshot
// and then trains the corpus on top of it.
func buildClassifier(ctx context.Context, cfg *config.Config, src source) (*bucket.Classifier, error) {
	c, err := bucket.New(cfg.ClassifierOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	resolver, err := newPathResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}

	if src.snapshotPath != "" {
		path := resolver.ResolvePath(src.snapshotPath)
		if err := snapshot.Load(path, c); err != nil {
			if !(src.missingOK && errors.Is(err, os.ErrNotExist)) {
				return nil, err
			}
			log.Warnf("Snapshot %s does not exist yet, starting empty", path)
		}
	}

	if len(src.corpusPaths) > 0 {
		paths := resolver.ResolvePaths(src.corpusPaths)
		samples, err := corpus.Load(ctx, paths, cfg.Corpus.Workers)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus: %w", err)
		}
		applied := corpus.Train(c, samples)
		log.Debug("Trained corpus", "samples", len(samples), "applied", applied)
	}

	stats := c.Stats()
	log.Debug("Classifier ready", "entries", stats.Entries, "words", stats.Words, "labels", stats.Labels)
	return c, nil
}
