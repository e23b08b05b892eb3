package bird_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/aviary/internal/bird"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := bird.LoadConfig(bird.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
	require.NoError(t, err)

	if cfg.BirdDir != ".birds" || cfg.Generations != 0 || cfg.LogLevel != "" {
		t.Errorf("defaults = %+v", cfg)
	}

	if cfg.BirdDirAbs != filepath.Join(dir, ".birds") || cfg.EffectiveCwd != dir {
		t.Errorf("resolved paths = %q, %q", cfg.BirdDirAbs, cfg.EffectiveCwd)
	}

	if cfg.Sources.Global != "" || cfg.Sources.Project != "" {
		t.Errorf("no config files should be loaded: %+v", cfg.Sources)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := filepath.Join(dir, "xdg")

	writeConfig(t, filepath.Join(xdg, "av", "config.json"), `{
		// global defaults
		"bird_dir": "global-birds",
		"generations": 3,
		"log_level": "INFO",
	}`)
	writeConfig(t, filepath.Join(dir, bird.ConfigFileName), `{"generations": 5 /* project */}`)

	env := map[string]string{"XDG_CONFIG_HOME": xdg}

	cfg, err := bird.LoadConfig(bird.LoadConfigInput{WorkDirOverride: dir, Env: env})
	require.NoError(t, err)

	if cfg.BirdDir != "global-birds" || cfg.Generations != 5 || cfg.LogLevel != "info" {
		t.Errorf("merged config = %+v", cfg)
	}

	if cfg.Sources.Project != filepath.Join(dir, bird.ConfigFileName) {
		t.Errorf("Sources.Project = %q", cfg.Sources.Project)
	}

	cfg, err = bird.LoadConfig(bird.LoadConfigInput{
		WorkDirOverride: dir,
		BirdDirOverride: "/abs/birds",
		Env:             env,
	})
	require.NoError(t, err)

	if cfg.BirdDir != "/abs/birds" || cfg.BirdDirAbs != "/abs/birds" {
		t.Errorf("CLI override not applied: %+v", cfg)
	}
}

func TestLoadConfigHomeFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".config", "av", "config.json"), `{"log_level": "debug"}`)

	cfg, err := bird.LoadConfig(bird.LoadConfigInput{
		WorkDirOverride: dir,
		Env:             map[string]string{"HOME": dir},
	})
	require.NoError(t, err)

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, bird.ConfigFileName), `{"generations": 2}`)
	writeConfig(t, filepath.Join(dir, "custom.json"), `{"generations": 7}`)

	cfg, err := bird.LoadConfig(bird.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      "custom.json",
		Env:             map[string]string{},
	})
	require.NoError(t, err)

	if cfg.Generations != 7 {
		t.Errorf("explicit config should replace project config, generations = %d", cfg.Generations)
	}

	_, err = bird.LoadConfig(bird.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      "nope.json",
		Env:             map[string]string{},
	})
	if !errors.Is(err, bird.ErrConfigFileNotFound) {
		t.Errorf("missing explicit config error = %v", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty bird_dir", content: `{"bird_dir": ""}`, wantErr: bird.ErrBirdDirEmpty},
		{name: "generations too high", content: `{"generations": 11}`, wantErr: bird.ErrGenerationsOutOfRange},
		{name: "negative generations", content: `{"generations": -1}`, wantErr: bird.ErrGenerationsOutOfRange},
		{name: "bad log level", content: `{"log_level": "chatty"}`, wantErr: bird.ErrConfigInvalid},
		{name: "broken json", content: `{"bird_dir": `, wantErr: bird.ErrConfigInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, filepath.Join(dir, bird.ConfigFileName), tc.content)

			_, err := bird.LoadConfig(bird.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestFormatConfig(t *testing.T) {
	t.Parallel()

	out, err := bird.FormatConfig(bird.Config{BirdDir: ".birds", Generations: 4, BirdDirAbs: "/x/.birds"})
	require.NoError(t, err)

	if !strings.Contains(out, `"bird_dir": ".birds"`) || !strings.Contains(out, `"generations": 4`) {
		t.Errorf("FormatConfig() = %s", out)
	}

	if strings.Contains(out, "/x/.birds") || strings.Contains(out, "log_level") {
		t.Errorf("FormatConfig() leaked computed or empty fields: %s", out)
	}
}
