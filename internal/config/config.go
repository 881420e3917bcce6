package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalConfigFile overrides the global config when present in the current directory
	LocalConfigFile = ".curlgen.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.curlgen)
	ConfigDir string

	// RequestsDir is the default directory for request definition files
	RequestsDir string

	// ConfigFile is the global settings file
	ConfigFile string

	// LogDir holds rotated log files when file logging is enabled
	LogDir string
)

// LogSettings configures diagnostic logging
type LogSettings struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `yaml:"maxBackups,omitempty"`
}

// Settings are the user defaults applied before command-line flags
type Settings struct {
	Display        string      `yaml:"display"`
	Style          string      `yaml:"style"`
	Timeout        int         `yaml:"timeout,omitempty"`
	ConnectTimeout int         `yaml:"connectTimeout,omitempty"`
	Copy           bool        `yaml:"copy,omitempty"`
	Log            LogSettings `yaml:"log"`
}

// Defaults returns the settings used when no config file exists
func Defaults() Settings {
	return Settings{
		Display: "raw",
		Style:   "github",
		Log: LogSettings{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

const defaultConfig = `# curlgen settings
display: raw        # raw, html or highlight
style: github       # chroma style for highlighted output
# timeout: 30
# connectTimeout: 10
copy: false
log:
  level: warn
  # file: curlgen.log
  maxSizeMB: 10
  maxBackups: 3
`

// Initialize sets up the configuration directories and files
// It creates ~/.curlgen/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".curlgen"))
}

// InitializeAt is Initialize with an explicit configuration directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	RequestsDir = filepath.Join(ConfigDir, "requests")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	LogDir = filepath.Join(ConfigDir, "logs")

	for _, d := range []string{ConfigDir, RequestsDir} {
		if err := os.MkdirAll(d, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfig), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// Load reads ./.curlgen.yaml when present, otherwise the global config
// file. Missing files yield the defaults.
func Load() (Settings, error) {
	return LoadFile(GetConfigFilePath())
}

// LoadFile reads settings from path on top of the defaults
func LoadFile(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return settings, nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile
	}
	return ConfigFile
}

// LogFilePath resolves the configured log file. Relative names are placed
// in LogDir. An empty name disables file logging.
func (s Settings) LogFilePath() string {
	if s.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(s.Log.File) || LogDir == "" {
		return s.Log.File
	}
	return filepath.Join(LogDir, s.Log.File)
}

// GetWorkingDirectory returns the directory request files are resolved against
// Falls back to the global requests directory if workdir is not set
func GetWorkingDirectory(workdir string) (string, error) {
	if workdir == "" {
		return RequestsDir, nil
	}

	// Expand tilde to home directory
	if strings.HasPrefix(workdir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		workdir = filepath.Join(homeDir, workdir[2:])
	}

	if filepath.IsAbs(workdir) {
		return workdir, nil
	}

	// Otherwise, it's relative to config directory
	dir := filepath.Join(ConfigDir, workdir)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return "", fmt.Errorf("failed to create working directory %s: %w", dir, err)
	}

	return dir, nil
}
