// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/cmdengine/internal/cueutil"
	"github.com/invowk/cmdengine/internal/issue"
	"github.com/invowk/cmdengine/pkg/argparse"
	"github.com/invowk/cmdengine/pkg/commandtree"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CUE(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "config.cue", `
tree: "bot.cue"
engine: {
	comparison: "case_sensitive"
	default_run_mode: "parallel"
	separator: ","
	quotes: {"<": ">"}
	cooldown_idle_ttl: "10m"
}
ui: verbose: true
`)
	loaded, err := LoadWithPath(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadWithPath() unexpected error: %v", err)
	}
	if loaded.Path != filepath.Join(dir, "config.cue") {
		t.Errorf("Path = %q", loaded.Path)
	}

	want := DefaultConfig()
	want.Tree = "bot.cue"
	want.Engine.Comparison = "case_sensitive"
	want.Engine.DefaultRunMode = "parallel"
	want.Engine.Separator = ","
	want.Engine.Quotes = map[string]string{"<": ">"}
	want.Engine.CooldownIdleTTL = "10m"
	want.UI.Verbose = true
	if diff := cmp.Diff(want, loaded.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	opts, err := loaded.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() unexpected error: %v", err)
	}
	if opts.Comparison != commandtree.ComparisonCaseSensitive || opts.DefaultRunMode != commandtree.RunModeParallel {
		t.Errorf("EngineOptions() = %+v", opts)
	}
	if opts.CooldownIdleTTL != 10*time.Minute || opts.QuoteMap['<'] != '>' || opts.Separator != "," {
		t.Errorf("EngineOptions() = %+v", opts)
	}
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "settings.toml", `
[engine]
argument_parser = "shell"
absence_nouns = ["nil"]
ignore_extra_arguments = true
`)
	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() unexpected error: %v", err)
	}
	if _, ok := opts.ArgumentParser.(argparse.Shell); !ok {
		t.Errorf("ArgumentParser = %T, want argparse.Shell", opts.ArgumentParser)
	}
	if diff := cmp.Diff([]string{"nil"}, opts.AbsenceNouns); diff != "" {
		t.Errorf("AbsenceNouns mismatch (-want +got):\n%s", diff)
	}
	if !opts.IgnoreExtraArguments {
		t.Error("IgnoreExtraArguments = false")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"schema violation", "config.cue", `engine: comparison: "loose"`, cueutil.ErrInvalidDocument},
		{"unknown key", "config.cue", `colour: "red"`, cueutil.ErrInvalidDocument},
		{"toml schema violation", "config.toml", "[engine]\nseparator = \"\"\n", cueutil.ErrInvalidDocument},
		{"toml syntax", "config.toml", "[engine\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() expected an error")
			}
			ae, ok := issue.AsActionable(err)
			if !ok || ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("error %v should be an actionable config error", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Error("Load() with canceled context should fail")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CMDENGINE_ENGINE_SEPARATOR", "|")
	t.Setenv("CMDENGINE_UI_STYLE", "notty")

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Engine.Separator != "|" || cfg.UI.Style != "notty" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestEngineOptions_Errors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Engine.Comparison = "fuzzy"
	cfg.Engine.ArgumentParser = "regex"
	cfg.Engine.Quotes = map[string]string{"<<": ">"}
	cfg.Engine.CooldownIdleTTL = "soon"

	_, err := cfg.EngineOptions()
	var ice *InvalidConfigError
	if !errors.As(err, &ice) {
		t.Fatalf("EngineOptions() error = %v, want *InvalidConfigError", err)
	}
	if len(ice.FieldErrors) != 4 {
		t.Errorf("FieldErrors = %v, want 4 entries", ice.FieldErrors)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, commandtree.ErrInvalidComparison) {
		t.Errorf("error should wrap ErrInvalidConfig and ErrInvalidComparison: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Engine.Separator = `"`
	if _, err := cfg.EngineOptions(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("separator containing a quote should be rejected, got %v", err)
	}
}

func TestConfig_TOML(t *testing.T) {
	t.Parallel()

	out, err := DefaultConfig().TOML()
	if err != nil {
		t.Fatalf("TOML() error: %v", err)
	}
	for _, want := range []string{"[engine]", "comparison = 'ignore_case'", "[ui]"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("TOML() missing %q:\n%s", want, out)
		}
	}
}
