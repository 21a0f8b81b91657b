// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/invowk/cmdengine/internal/cueutil"
	"github.com/invowk/cmdengine/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "cmdengine"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "CMDENGINE"
)

// extensions lists supported config file extensions in lookup order.
var extensions = []string{".cue", ".toml"}

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the cmdengine directory under the user config directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// loadWithOptions returns the config and the path it was read from, empty
// when only defaults and environment applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check the file syntax", "Verify the values match the expected keys and spellings").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tree", d.Tree)
	v.SetDefault("engine.comparison", d.Engine.Comparison)
	v.SetDefault("engine.default_run_mode", d.Engine.DefaultRunMode)
	v.SetDefault("engine.ignore_extra_arguments", d.Engine.IgnoreExtraArguments)
	v.SetDefault("engine.separator", d.Engine.Separator)
	v.SetDefault("engine.separator_requirement", d.Engine.SeparatorRequirement)
	v.SetDefault("engine.argument_parser", d.Engine.ArgumentParser)
	v.SetDefault("engine.absence_nouns", d.Engine.AbsenceNouns)
	v.SetDefault("engine.cooldown_idle_ttl", d.Engine.CooldownIdleTTL)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.style", d.UI.Style)
}

// resolvePath finds the config file to read. An explicit path must exist;
// otherwise a missing file means defaults.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				Wrap(fmt.Errorf("config file not found: %w", os.ErrNotExist)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	for _, base := range []string{dir, "."} {
		for _, ext := range extensions {
			candidate := filepath.Join(base, ConfigFileName+ext)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", nil
}

// mergeFile reads a CUE or TOML file, validates it against #Config and
// merges it into v.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if size := int64(len(data)); size > cueutil.DefaultSizeLimit {
		return &cueutil.SizeError{File: path, Size: size, Limit: cueutil.DefaultSizeLimit}
	}

	cctx := cuecontext.New()
	var doc cue.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			var de *toml.DecodeError
			if errors.As(err, &de) {
				row, col := de.Position()
				return fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		doc = cctx.Encode(raw)
	default:
		doc = cctx.CompileBytes(data, cue.Filename(path))
	}

	configMap, err := validate(cctx, doc, path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func validate(cctx *cue.Context, doc cue.Value, path string) (map[string]any, error) {
	schema := cctx.CompileBytes(configSchema, cue.Filename("config_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", cueutil.ErrSchema, err)
	}
	if err := doc.Err(); err != nil {
		return nil, cueutil.FormatError(err, path)
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, cueutil.FormatError(err, path)
	}
	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, cueutil.FormatError(err, path)
	}
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// TOML renders c for display.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}
