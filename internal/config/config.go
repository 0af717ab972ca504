// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads and layers Ekam's project settings the way the
// teacher's own cmd/ + config provider does: an optional ekam.yaml
// project file under CLI flags, defaults filled in with dario.cat/mergo,
// and the per-user fallback location resolved through adrg/xdg when no
// project-local file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"dario.cat/mergo"
	goccyyaml "github.com/goccy/go-yaml"
	"github.com/spf13/viper"
)

// Config is the fully-resolved engine configuration: project roots,
// concurrency, ignore globs, and the ambient logging/dashboard settings
// the command-line flags expose.
type Config struct {
	SrcDir                string   `mapstructure:"src_dir"`
	TmpDir                string   `mapstructure:"tmp_dir"`
	BinDir                string   `mapstructure:"bin_dir"`
	LibDir                string   `mapstructure:"lib_dir"`
	MaxConcurrentActions  int      `mapstructure:"max_concurrent_actions"`
	BypassDirs            []string `mapstructure:"bypass_dirs"`
	LogFormat             string   `mapstructure:"log_format"`
	Debug                 bool     `mapstructure:"debug"`
	NetworkAddr           string   `mapstructure:"network_addr"`
	LineCap               int      `mapstructure:"line_cap"`
	ConfigFileUsed        string   `mapstructure:"-"`
}

func defaults() Config {
	return Config{
		SrcDir:               "src",
		TmpDir:               "tmp",
		BinDir:               "bin",
		LibDir:               "lib",
		MaxConcurrentActions: runtime.NumCPU(),
		LogFormat:            "text",
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	configFile  string
	projectRoot string
}

// WithConfigFile pins the project config file path, bypassing project
// root/XDG discovery.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) { o.configFile = path }
}

// WithProjectRoot sets the directory Load looks for ekam.yaml in, when
// no explicit config file is given.
func WithProjectRoot(root string) Option {
	return func(o *loadOptions) { o.projectRoot = root }
}

// Load resolves a Config from (in increasing priority) built-in
// defaults, an ekam.yaml project file (or the XDG per-user fallback),
// and EKAM_-prefixed environment variables. CLI flags are layered on
// top afterward by the caller via ApplyOverrides.
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	v.SetEnvPrefix("EKAM")
	v.AutomaticEnv()

	configFile := o.configFile
	if configFile == "" {
		configFile = locateConfigFile(o.projectRoot)
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", configFile, err)
		}
		if err == nil {
			decoded := map[string]any{}
			if err := goccyyaml.Unmarshal(data, &decoded); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", configFile, err)
			}
			if err := v.MergeConfigMap(decoded); err != nil {
				return nil, fmt.Errorf("merging %s: %w", configFile, err)
			}
		}
	}

	cfg := defaults()
	fromFile := Config{
		SrcDir:               v.GetString("src_dir"),
		TmpDir:               v.GetString("tmp_dir"),
		BinDir:               v.GetString("bin_dir"),
		LibDir:               v.GetString("lib_dir"),
		MaxConcurrentActions: v.GetInt("max_concurrent_actions"),
		BypassDirs:           v.GetStringSlice("bypass_dirs"),
		LogFormat:            v.GetString("log_format"),
		Debug:                v.GetBool("debug"),
		NetworkAddr:          v.GetString("network_addr"),
		LineCap:              v.GetInt("line_cap"),
	}
	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
		return nil, fmt.Errorf("merging config layers: %w", err)
	}
	// mergo's WithOverwriteWithEmptyValue also blows away non-empty
	// defaults with the file layer's unset zero values, so re-apply the
	// defaults underneath anything the file layer left unset.
	if err := mergo.Merge(&cfg, defaults()); err != nil {
		return nil, fmt.Errorf("filling config defaults: %w", err)
	}

	cfg.ConfigFileUsed = configFile
	return &cfg, nil
}

// ApplyOverrides layers non-zero fields of override on top of cfg, the
// CLI-flags-win-over-file-and-env step of config resolution.
func ApplyOverrides(cfg *Config, override Config) error {
	return mergo.Merge(cfg, override, mergo.WithOverride)
}

func locateConfigFile(projectRoot string) string {
	if projectRoot != "" {
		candidate := filepath.Join(projectRoot, "ekam.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if candidate, err := os.Stat("ekam.yaml"); err == nil && !candidate.IsDir() {
		return "ekam.yaml"
	}
	if p, err := xdg.SearchConfigFile(filepath.Join("ekam", "config.yaml")); err == nil {
		return p
	}
	return ""
}
