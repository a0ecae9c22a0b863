/*
Package config manages TOML config for wordbucket.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/charmbracelet/log"
)

// AppName names the config directory
const AppName = "wordbucket"

// Config holds the entire config structure
type Config struct {
	Classifier ClassifierConfig `toml:"classifier"`
	Server     ServerConfig     `toml:"server"`
	Corpus     CorpusConfig     `toml:"corpus"`
	CLI        CliConfig        `toml:"cli"`
}

// ClassifierConfig holds options of the classifier core.
type ClassifierConfig struct {
	// Stopwords replaces the builtin list when not empty
	Stopwords      []string `toml:"stopwords"`
	ExtraStopwords []string `toml:"extra_stopwords"`
	Stem           bool     `toml:"stem"`
	CacheSize      int      `toml:"cache_size"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxTextLen    int    `toml:"max_text_len"`
	MetricsAddr   string `toml:"metrics_addr"`
	SnapshotPath  string `toml:"snapshot_path"`
	AutosaveEvery int    `toml:"autosave_every"`
}

// CorpusConfig holds corpus loading options.
type CorpusConfig struct {
	Workers int `toml:"workers"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ScoreLimit int `toml:"score_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Stopwords:      []string{},
			ExtraStopwords: []string{},
			Stem:           false,
			CacheSize:      bucket.DefaultCacheSize,
		},
		Server: ServerConfig{
			MaxTextLen:    4096,
			MetricsAddr:   "",
			SnapshotPath:  "",
			AutosaveEvery: 0,
		},
		Corpus: CorpusConfig{
			Workers: 4,
		},
		CLI: CliConfig{
			ScoreLimit: 10,
		},
	}
}

// ClassifierOptions turns the classifier section into bucket options
func (c *Config) ClassifierOptions() []bucket.Option {
	opts := []bucket.Option{
		bucket.WithStemming(c.Classifier.Stem),
		bucket.WithCacheSize(c.Classifier.CacheSize),
	}
	if stopwords := utils.Unique(c.Classifier.Stopwords); len(stopwords) > 0 {
		opts = append(opts, bucket.WithStopwords(stopwords...))
	}
	if extra := utils.Unique(c.Classifier.ExtraStopwords); len(extra) > 0 {
		opts = append(opts, bucket.WithExtraStopwords(extra...))
	}
	return opts
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/wordbucket or ~/.config/wordbucket
// 2. ~/Library/Application Support/wordbucket (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		xdgPath := filepath.Join(xdg, AppName)
		if result := utils.CheckDirStatus(xdgPath); result.Writable {
			return xdgPath, nil
		}
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordbucket/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every valid value of a TOML file that failed strict decoding
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "classifier"); ok {
		extractClassifierConfig(section, &config.Classifier)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

// extractClassifierConfig extracts classifier configuration from a map
func extractClassifierConfig(data map[string]any, c *ClassifierConfig) {
	if val, ok := utils.ExtractStrings(data, "stopwords"); ok {
		c.Stopwords = val
	}
	if val, ok := utils.ExtractStrings(data, "extra_stopwords"); ok {
		c.ExtraStopwords = val
	}
	if val, ok := utils.ExtractBool(data, "stem"); ok {
		c.Stem = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		c.CacheSize = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_text_len"); ok {
		server.MaxTextLen = val
	}
	if val, ok := utils.ExtractString(data, "metrics_addr"); ok {
		server.MetricsAddr = val
	}
	if val, ok := utils.ExtractString(data, "snapshot_path"); ok {
		server.SnapshotPath = val
	}
	if val, ok := utils.ExtractInt64(data, "autosave_every"); ok {
		server.AutosaveEvery = val
	}
}

// extractCorpusConfig extracts corpus configuration from a map
func extractCorpusConfig(data map[string]any, corpus *CorpusConfig) {
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		corpus.Workers = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "score_limit"); ok {
		cli.ScoreLimit = val
	}
}

// sanitize puts out of range values back to their defaults
func (c *Config) sanitize() {
	defaults := DefaultConfig()
	if c.Classifier.CacheSize < 0 {
		log.Warnf("classifier.cache_size %d is negative, using %d", c.Classifier.CacheSize, defaults.Classifier.CacheSize)
		c.Classifier.CacheSize = defaults.Classifier.CacheSize
	}
	if c.Server.MaxTextLen < 1 {
		log.Warnf("server.max_text_len %d is too small, using %d", c.Server.MaxTextLen, defaults.Server.MaxTextLen)
		c.Server.MaxTextLen = defaults.Server.MaxTextLen
	}
	if c.Server.AutosaveEvery < 0 {
		c.Server.AutosaveEvery = 0
	}
	if c.Corpus.Workers < 1 {
		c.Corpus.Workers = defaults.Corpus.Workers
	}
	if c.CLI.ScoreLimit < 1 {
		c.CLI.ScoreLimit = defaults.CLI.ScoreLimit
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes server values and saves to file. Nil pointers keep the current value.
func (c *Config) Update(configPath string, snapshotPath *string, autosaveEvery, maxTextLen *int) error {
	server := &c.Server
	if snapshotPath != nil {
		server.SnapshotPath = *snapshotPath
	}
	if autosaveEvery != nil {
		server.AutosaveEvery = *autosaveEvery
	}
	if maxTextLen != nil {
		server.MaxTextLen = *maxTextLen
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
