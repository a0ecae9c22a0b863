package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver resolves user given paths (corpora, snapshots) against the
// working directory, the executable directory and the config directory.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver(configDir string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      configDir,
	}

	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, configDir)
	return pr, nil
}

// candidates lists where a relative path may live, in order of preference
func (pr *PathResolver) candidates(userPath string) []string {
	if filepath.IsAbs(userPath) {
		return []string{userPath}
	}
	if strings.HasPrefix(userPath, "~"+string(filepath.Separator)) {
		return []string{filepath.Join(pr.homeDir, userPath[2:])}
	}

	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, userPath))
	}
	paths = append(paths, filepath.Join(pr.executableDir, userPath))
	if pr.configDir != "" {
		paths = append(paths, filepath.Join(pr.configDir, userPath))
	}
	return paths
}

// ResolvePath returns the first existing candidate for userPath.
// When nothing exists yet the working directory candidate is returned,
// so new files (snapshots) land where the user expects them.
func (pr *PathResolver) ResolvePath(userPath string) string {
	if userPath == "" {
		return ""
	}
	paths := pr.candidates(userPath)
	for _, p := range paths {
		if FileExists(p) {
			log.Debugf("Resolved %s to %s", userPath, p)
			return p
		}
		log.Debugf("Path candidate not found: %s", p)
	}
	return paths[0]
}

// ResolvePaths resolves every path of a list
func (pr *PathResolver) ResolvePaths(userPaths []string) []string {
	out := make([]string, 0, len(userPaths))
	for _, p := range userPaths {
		out = append(out, pr.ResolvePath(p))
	}
	return out
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()

	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}

	envVars := []string{"HOME", "XDG_CONFIG_HOME", "APPDATA"}
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
