package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lucasefe/dbterd"
	"github.com/lucasefe/dbterd/internal/logfields"
)

// inputFilter selects the file events that should trigger a regeneration:
// the schema and catalog files and any file directly in the docs directory.
// The output file and its temporary siblings never match.
type inputFilter struct {
	files     map[string]bool
	docsDir   string
	output    string
	tmpPrefix string
}

func newInputFilter(config *dbterd.Config) (*inputFilter, error) {
	f := &inputFilter{files: make(map[string]bool)}

	for _, p := range []string{config.SchemaPath, config.CatalogPath} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		f.files[abs] = true
	}
	if config.DocsPath != "" {
		abs, err := filepath.Abs(config.DocsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", config.DocsPath, err)
		}
		f.docsDir = abs
	}
	if config.OutputPath != "" && config.OutputPath != stdout {
		abs, err := filepath.Abs(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", config.OutputPath, err)
		}
		f.output = abs
		f.tmpPrefix = "." + filepath.Base(abs) + "."
	}
	return f, nil
}

// dirs returns the directories to watch. Directories are watched rather
// than files so that editors replacing files by rename are still seen.
func (f *inputFilter) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	for file := range f.files {
		add(filepath.Dir(file))
	}
	if f.docsDir != "" {
		add(f.docsDir)
	}
	return dirs
}

func (f *inputFilter) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if abs == f.output || (f.tmpPrefix != "" && strings.HasPrefix(filepath.Base(abs), f.tmpPrefix)) {
		return false
	}
	if f.files[abs] {
		return true
	}
	return f.docsDir != "" && filepath.Dir(abs) == f.docsDir
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// watchInputs calls regenerate after each burst of input changes, once the
// inputs have been quiet for debounce. It returns when ctx is done.
func watchInputs(ctx context.Context, config *dbterd.Config, debounce time.Duration, logger *slog.Logger, regenerate func()) error {
	filter, err := newInputFilter(config)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range filter.dirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		logger.Debug("Watching directory", logfields.Path(dir))
	}
	logger.Info("Watching inputs for changes; press Ctrl-C to stop")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 || !filter.matches(event.Name) {
				continue
			}
			logger.Debug("Input changed", logfields.File(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			regenerate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", logfields.Error(err))
		}
	}
}
