// Package config resolves fastfolder's settings from flags, environment,
// an optional YAML file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FASTFOLDER"

	DefaultMaxHistory = 10
	DefaultDepth      = 3
	MinDepth          = 1
	MaxDepth          = 5
	DefaultMaxResults = 100
	DefaultDebounceMS = 300
)

// Keys understood in the config file and as FASTFOLDER_* variables.
const (
	KeySearchPaths      = "search_paths"
	KeyMaxHistoryItems  = "max_history_items"
	KeySearchDepth      = "search_depth"
	KeyMaxResults       = "max_results"
	KeyDebounceMS       = "debounce_ms"
	KeySkipDirs         = "skip_dirs"
	KeyRespectGitignore = "respect_gitignore"
	KeyDBPath           = "db_path"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyLogFile          = "log_file"
	KeyDefaultAction    = "default_action"
	KeyExplorerCmd      = "actions.explorer"
	KeyTerminalCmd      = "actions.terminal"
	KeyEditorCmd        = "actions.editor"
)

// Actions holds the command templates used to open a folder. "{path}" is
// replaced with the selected path.
type Actions struct {
	Default  string `yaml:"default"`
	Explorer string `yaml:"explorer"`
	Terminal string `yaml:"terminal"`
	Editor   string `yaml:"editor"`
}

// Config is the resolved configuration.
type Config struct {
	SearchPaths      []string `yaml:"search_paths"`
	MaxHistoryItems  int      `yaml:"max_history_items"`
	SearchDepth      int      `yaml:"search_depth"`
	MaxResults       int      `yaml:"max_results"`
	DebounceMS       int      `yaml:"debounce_ms"`
	SkipDirs         []string `yaml:"skip_dirs"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	DBPath           string   `yaml:"db_path"`
	LogLevel         string   `yaml:"log_level"`
	LogFormat        string   `yaml:"log_format"`
	LogFile          string   `yaml:"log_file"`
	Actions          Actions  `yaml:"actions"`
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault(KeySearchPaths, home)
	v.SetDefault(KeyMaxHistoryItems, DefaultMaxHistory)
	v.SetDefault(KeySearchDepth, DefaultDepth)
	v.SetDefault(KeyMaxResults, DefaultMaxResults)
	v.SetDefault(KeyDebounceMS, DefaultDebounceMS)
	v.SetDefault(KeySkipDirs, []string{})
	v.SetDefault(KeyRespectGitignore, false)
	v.SetDefault(KeyDBPath, filepath.Join(home, ".local", "share", "fastfolder", "fastfolder.db"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, filepath.Join(home, ".local", "state", "fastfolder", "fastfolder.log"))

	actions := DefaultActions()
	v.SetDefault(KeyDefaultAction, actions.Default)
	v.SetDefault(KeyExplorerCmd, actions.Explorer)
	v.SetDefault(KeyTerminalCmd, actions.Terminal)
	v.SetDefault(KeyEditorCmd, actions.Editor)
}

// DefaultActions derives command templates from $EDITOR, $TERMINAL and $SHELL.
func DefaultActions() Actions {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nvim"
	}
	terminal := os.Getenv("TERMINAL")
	if terminal == "" {
		terminal = "xterm"
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	return Actions{
		Default:  "explorer",
		Explorer: `xdg-open "{path}"`,
		Terminal: fmt.Sprintf(`%s -e bash -lc 'cd "%s"; exec %s'`, terminal, "{path}", shell),
		Editor:   fmt.Sprintf(`%s "{path}"`, editor),
	}
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fastfolder")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fastfolder")
}

// ReadFile loads cfgFile, or config.yaml from ConfigDir when cfgFile is empty.
// A missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load resolves a Config from v, normalising out-of-range values.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		SearchPaths:      ParseSearchPaths(rawList(v.Get(KeySearchPaths))),
		MaxHistoryItems:  positiveOr(v.GetString(KeyMaxHistoryItems), DefaultMaxHistory),
		SearchDepth:      ClampDepth(positiveOr(v.GetString(KeySearchDepth), DefaultDepth)),
		MaxResults:       positiveOr(v.GetString(KeyMaxResults), DefaultMaxResults),
		DebounceMS:       nonNegativeOr(v.GetString(KeyDebounceMS), DefaultDebounceMS),
		SkipDirs:         splitList(v.GetStringSlice(KeySkipDirs)),
		RespectGitignore: v.GetBool(KeyRespectGitignore),
		DBPath:           ExpandHome(v.GetString(KeyDBPath)),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		LogFile:          ExpandHome(v.GetString(KeyLogFile)),
		Actions: Actions{
			Default:  v.GetString(KeyDefaultAction),
			Explorer: v.GetString(KeyExplorerCmd),
			Terminal: v.GetString(KeyTerminalCmd),
			Editor:   v.GetString(KeyEditorCmd),
		},
	}

	if len(cfg.SearchPaths) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("no search paths configured and no home directory: %w", err)
		}
		cfg.SearchPaths = []string{home}
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyDBPath)
	}
	return cfg, nil
}

// ParseSearchPaths splits a comma-separated list, trimming blanks, expanding
// "~" and dropping duplicates.
func ParseSearchPaths(raw string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(ExpandHome(p))
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// ClampDepth limits a search depth to the supported range.
func ClampDepth(depth int) int {
	return max(MinDepth, min(depth, MaxDepth))
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func nonNegativeOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// rawList flattens a YAML list or a plain string into one comma-separated value.
func rawList(value any) string {
	switch val := value.(type) {
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
