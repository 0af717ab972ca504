// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ekam-build/ekam/internal/config"
	"github.com/ekam-build/ekam/internal/dashboard"
	"github.com/ekam-build/ekam/internal/engine"
	"github.com/ekam-build/ekam/internal/logger"
	"github.com/ekam-build/ekam/internal/watcher"
)

// cliOptions holds the flags newRootCommand binds, layered onto the
// loaded config.Config before the engine is built.
type cliOptions struct {
	maxConcurrent int
	configFile    string
	networkAddr   string
	lineCap       int
	debug         bool
	watch         bool
}

func run(ctx context.Context, opts cliOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dash, err := buildDashboard(cfg)
	if err != nil {
		return fmt.Errorf("starting dashboard: %w", err)
	}
	defer dash.Close()

	logOpts := []logger.Option{
		logger.WithFormat(cfg.LogFormat),
		logger.WithLineCap(cfg.LineCap),
	}
	if cfg.Debug {
		logOpts = append(logOpts, logger.WithDebug())
	}
	log := logger.NewLogger(logOpts...)

	for _, dir := range []string{cfg.SrcDir, cfg.TmpDir, cfg.BinDir, cfg.LibDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("preparing %s: %w", dir, err)
		}
	}

	eng := engine.New(cfg.MaxConcurrentActions, engine.Roots{
		Src: cfg.SrcDir, Tmp: cfg.TmpDir, Bin: cfg.BinDir, Lib: cfg.LibDir,
	}, log, dash)

	if err := seedSourceTree(eng, cfg.SrcDir, ignorePatterns(cfg.BypassDirs)); err != nil {
		return fmt.Errorf("scanning source tree: %w", err)
	}

	if opts.watch {
		return runWatch(ctx, eng, cfg, log)
	}

	waitIdle(eng)
	if err := eng.Summary(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func loadConfig(opts cliOptions) (*config.Config, error) {
	cfg, err := config.Load(config.WithConfigFile(opts.configFile))
	if err != nil {
		return nil, err
	}
	override := config.Config{
		MaxConcurrentActions: opts.maxConcurrent,
		NetworkAddr:          opts.networkAddr,
		LineCap:              opts.lineCap,
		Debug:                opts.debug,
	}
	if err := config.ApplyOverrides(cfg, override); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildDashboard(cfg *config.Config) (dashboard.Dashboard, error) {
	if cfg.NetworkAddr != "" {
		return dashboard.NewNetwork(cfg.NetworkAddr)
	}
	return dashboard.NewConsole(os.Stdout), nil
}

// seedSourceTree walks srcDir once, reporting every regular file to the
// engine the way a continuous watcher's initial scan would.
func seedSourceTree(eng *engine.Engine, srcDir string, ignore []string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && matchesAny(ignore, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		eng.AddSourceFile(rel)
		return nil
	})
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// waitIdle blocks until the engine's scheduler reaches fixpoint. The
// engine itself advances entirely off goroutines spawned from driver
// callbacks (see driver.go's Passed/Failed/Done), so the only thing
// left to do here is poll for quiescence.
func waitIdle(eng *engine.Engine) {
	for !eng.Idle() {
		time.Sleep(20 * time.Millisecond)
	}
}

// ignorePatterns turns config.Config's bypass_dirs (plain directory
// names, e.g. "vendor", ".git") into doublestar glob patterns matching
// that directory and everything beneath it.
func ignorePatterns(bypassDirs []string) []string {
	patterns := make([]string, 0, len(bypassDirs)*2)
	for _, dir := range bypassDirs {
		patterns = append(patterns, dir, dir+"/**")
	}
	return patterns
}

func runWatch(parent context.Context, eng *engine.Engine, cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	w, err := watcher.New(cfg.SrcDir, eng, ignorePatterns(cfg.BypassDirs), log)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	return w.Run(ctx)
}
