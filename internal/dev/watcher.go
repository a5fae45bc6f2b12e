package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeGo ChangeType = iota
	ChangeCSS
	ChangeConfig
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangeGo:
		return "go"
	case ChangeCSS:
		return "css"
	case ChangeConfig:
		return "config"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore holds names, path fragments or globs to skip.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration

	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls the watched paths for modifications.
type Watcher struct {
	config WatcherConfig
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	modTimes map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "watcher")
	}
	return &Watcher{config: config, logger: logger}
}

// Run polls until ctx is done, calling onChange once per change type per
// tick so a burst of saves produces a single notification.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.modTimes = w.scan()
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.logger.Debug("watching", "paths", w.config.Paths, "files", len(w.modTimes))

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, c := range w.poll() {
				w.logger.Info("file changed", "path", c.Path, "type", c.Type.String())
				onChange(c)
			}
		}
	}
}

// IsRunning reports whether Run is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) scan() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				out[p] = info.ModTime()
			}
			return nil
		})
	}
	return out
}

// poll diffs a fresh scan against the previous one.
func (w *Watcher) poll() []Change {
	current := w.scan()

	w.mu.Lock()
	previous := w.modTimes
	w.modTimes = current
	w.mu.Unlock()

	var changes []Change
	seen := make(map[ChangeType]bool)
	add := func(p string) {
		t := classifyChange(p)
		if seen[t] {
			return
		}
		seen[t] = true
		changes = append(changes, Change{Path: p, Type: t})
	}
	for p, mod := range current {
		if old, ok := previous[p]; !ok || mod.After(old) {
			add(p)
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			add(p)
		}
	}
	return changes
}

func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			target := name
			if hasSep {
				target = normalized
			}
			if ok, _ := path.Match(pattern, target); ok {
				return true
			}
			continue
		}
		if hasSep {
			if strings.Contains("/"+normalized+"/", "/"+strings.Trim(pattern, "/")+"/") {
				return true
			}
			continue
		}
		for _, seg := range strings.Split(normalized, "/") {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}

func classifyChange(p string) ChangeType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".go":
		return ChangeGo
	case ".css":
		return ChangeCSS
	case ".yaml", ".yml", ".env":
		return ChangeConfig
	}
	return ChangeAsset
}
