package bird

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/aviary/pkg/pedigree"
)

// Config holds all configuration options.
type Config struct {
	BirdDir     string `json:"bird_dir"`
	Generations int    `json:"generations,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	BirdDirAbs   string `json:"-"`

	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BirdDir: ".birds",
	}
}

// ConfigFileName is the project config file name.
const ConfigFileName = ".av.json"

// validLogLevels are the accepted log_level values. Empty disables logging.
var validLogLevels = []string{"", "debug", "info", "warn", "error"}

// globalConfigPath returns $XDG_CONFIG_HOME/av/config.json or
// ~/.config/av/config.json, or "" if neither can be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "av", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "av", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd; os.Getwd() when empty
	ConfigPath      string            // -c/--config
	BirdDirOverride string            // --bird-dir; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/av/config.json or $XDG_CONFIG_HOME/av/config.json)
// 3. Project config file (.av.json, if it exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
//
// All paths in the returned Config are absolute.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	if globalPath := globalConfigPath(input.Env); globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	projectPath, mustExist := filepath.Join(workDir, ConfigFileName), false

	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	projectCfg, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
		cfg = mergeConfig(cfg, projectCfg)
	}

	if input.BirdDirOverride != "" {
		cfg.BirdDir = input.BirdDirOverride
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.BirdDir) {
		cfg.BirdDirAbs = cfg.BirdDir
	} else {
		cfg.BirdDirAbs = filepath.Join(workDir, cfg.BirdDir)
	}

	return cfg, nil
}

// fileConfig mirrors Config with pointers so explicit empty values can be told
// apart from missing keys.
type fileConfig struct {
	BirdDir     *string `json:"bird_dir"`
	Generations *int    `json:"generations"`
	LogLevel    *string `json:"log_level"`
}

// loadConfigFile loads a config file. If mustExist is false, a missing file
// is not an error and loaded is false.
func loadConfigFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	if cfg.BirdDir != nil && *cfg.BirdDir == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrBirdDirEmpty)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base Config, overlay fileConfig) Config {
	if overlay.BirdDir != nil {
		base.BirdDir = *overlay.BirdDir
	}

	if overlay.Generations != nil {
		base.Generations = *overlay.Generations
	}

	if overlay.LogLevel != nil {
		base.LogLevel = strings.ToLower(*overlay.LogLevel)
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.BirdDir == "" {
		return ErrBirdDirEmpty
	}

	if cfg.Generations < 0 || cfg.Generations > pedigree.MaxGenerations {
		return fmt.Errorf("%w: %d", ErrGenerationsOutOfRange, cfg.Generations)
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("%w: log_level %q", ErrConfigInvalid, cfg.LogLevel)
	}

	return nil
}

// FormatConfig renders the serializable part of cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	return string(data), nil
}
