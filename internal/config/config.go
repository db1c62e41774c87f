package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DirName is the name of both the global (~/.rolodex) and repo (.rolodex)
// configuration directories.
const DirName = ".rolodex"

// Config holds application configuration.
type Config struct {
	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.rolodex/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "contact". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// ExportWorkers bounds how many vCards are built concurrently during an export.
	ExportWorkers int `json:"export_workers,omitempty"`

	// PhotoMaxBytes caps the size of a contact photo read from disk at export time.
	PhotoMaxBytes int64 `json:"photo_max_bytes,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`
}

// envConfig lists the settings that can be overridden from the environment.
type envConfig struct {
	AllowedPaths     []string `env:"ROLODEX_ALLOWED_PATHS" env-separator:","`
	AllowUnsafePaths bool     `env:"ROLODEX_ALLOW_UNSAFE_PATHS"`
	DBMaxOpenConns   int      `env:"ROLODEX_DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns   int      `env:"ROLODEX_DB_MAX_IDLE_CONNS"`
	DisabledTools    []string `env:"ROLODEX_DISABLED_TOOLS" env-separator:","`
	ExportWorkers    int      `env:"ROLODEX_EXPORT_WORKERS"`
	PhotoMaxBytes    int64    `env:"ROLODEX_PHOTO_MAX_BYTES"`
	LogLevel         string   `env:"ROLODEX_LOG_LEVEL"`
	LogFormat        string   `env:"ROLODEX_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExportWorkers: 4,
		PhotoMaxBytes: 5 << 20,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.rolodex.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.rolodex) and repo (.rolodex) directories.
// Repo config is found by walking upward from startDir to find the nearest .rolodex/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	// Walk upward from startDir to find repo config
	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// LoadAll is LoadWithRepo followed by ROLODEX_* environment overrides.
// Environment values win over both files, using the same merge rules.
func LoadAll(globalDir, startDir string) (*Config, error) {
	cfg, err := LoadWithRepo(globalDir, startDir)
	if err != nil {
		return nil, err
	}
	return ApplyEnv(cfg)
}

// ApplyEnv overlays ROLODEX_* environment variables onto cfg.
func ApplyEnv(cfg *Config) (*Config, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return Merge(cfg, &Config{
		AllowedPaths:     env.AllowedPaths,
		AllowUnsafePaths: env.AllowUnsafePaths,
		DBMaxOpenConns:   env.DBMaxOpenConns,
		DBMaxIdleConns:   env.DBMaxIdleConns,
		DisabledTools:    env.DisabledTools,
		ExportWorkers:    env.ExportWorkers,
		PhotoMaxBytes:    env.PhotoMaxBytes,
		LogLevel:         env.LogLevel,
		LogFormat:        env.LogFormat,
	}), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .rolodex/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DBMaxOpenConns = firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.ExportWorkers = firstNonZero(overlay.ExportWorkers, base.ExportWorkers)
	result.PhotoMaxBytes = firstNonZero(overlay.PhotoMaxBytes, base.PhotoMaxBytes)
	result.LogLevel = firstNonZero(strings.TrimSpace(overlay.LogLevel), base.LogLevel)
	result.LogFormat = firstNonZero(strings.TrimSpace(overlay.LogFormat), base.LogFormat)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonZero[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
