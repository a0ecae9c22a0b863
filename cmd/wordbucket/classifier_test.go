package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordbucket/pkg/config"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClassifier(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	t.Cleanup(func() { configPath = "" })

	corpusFile := filepath.Join(dir, "samples.tsv")
	require.NoError(t, os.WriteFile(corpusFile, []byte(
		"book\tThe child reads a classical novel\n"+
			"magazine\tHe reads a generonormative magazine\n"+
			"magazine\tIn the filthy store they sell magazines\n"), 0644))

	cfg := config.DefaultConfig()
	c, err := buildClassifier(context.Background(), cfg, source{corpusPaths: []string{corpusFile}})
	require.NoError(t, err)
	assert.Equal(t, []string{"book"}, c.Guess("Miss so and so visits the classical library"))

	snap := filepath.Join(dir, "table.msgpack")
	require.NoError(t, snapshot.Save(snap, c))

	restored, err := buildClassifier(context.Background(), cfg, source{snapshotPath: snap})
	require.NoError(t, err)
	assert.Equal(t, c.Dump(), restored.Dump())

	missing := filepath.Join(dir, "missing.msgpack")
	_, err = buildClassifier(context.Background(), cfg, source{snapshotPath: missing})
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty, err := buildClassifier(context.Background(), cfg, source{snapshotPath: missing, missingOK: true})
	require.NoError(t, err)
	assert.Empty(t, empty.Dump())
}

func TestOutputPathIgnoresResolverCandidates(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	t.Cleanup(func() { configPath = "" })

	// a file with the same name in the config dir must not be picked
	require.NoError(t, os.WriteFile(filepath.Join(dir, "table-out.msgpack"), []byte("keep"), 0644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	out, err := outputPath("table-out.msgpack")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "table-out.msgpack"), out)

	abs := filepath.Join(dir, "abs.msgpack")
	out, err = outputPath(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, out)

	_, err = outputPath(dir)
	assert.Error(t, err)
}

func TestLoadAppConfigRebuild(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() {
		appConfig = nil
		configPath = ""
	})

	path, err := config.GetDefaultConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("[cli]\nscore_limit = 42\n"), 0644))

	require.NoError(t, loadAppConfig("", false))
	assert.Equal(t, 42, appConfig.CLI.ScoreLimit)
	assert.Equal(t, path, configPath)

	require.NoError(t, loadAppConfig("", true))
	assert.Equal(t, config.DefaultConfig().CLI.ScoreLimit, appConfig.CLI.ScoreLimit)
}
