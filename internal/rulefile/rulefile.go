package rulefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/aridelmo/argus/internal/logger"
	"github.com/aridelmo/argus/internal/models"
	"github.com/aridelmo/argus/internal/waf"
)

// File is the on-disk seed rule format:
//
//	rules:
//	  - "(?i)drop\\s+table"
//	  - "(?i)<script"
type File struct {
	Rules []string `yaml:"rules"`
}

// Load parses the YAML seed file and inserts every pattern as a manual rule.
// Invalid patterns are skipped with a warning; duplicates are no-ops. Returns
// the number of newly added rules.
func Load(path string, store *waf.RuleStore) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("parse rules file: %w", err)
	}

	added := 0
	for _, pattern := range f.Rules {
		if pattern == "" {
			continue
		}
		_, created, err := store.Add(pattern, models.RuleOriginManual)
		if err != nil {
			logger.WithComponent("rulefile").WithError(err).
				WithField("pattern", pattern).Warn("skipping invalid seed rule")
			continue
		}
		if created {
			added++
		}
	}
	return added, nil
}

// Watch reloads the seed file whenever it changes, until the context is
// cancelled. Editors replace files rather than writing in place, so the
// parent directory is watched and events are filtered by name.
func Watch(ctx context.Context, path string, store *waf.RuleStore) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		log := logger.WithComponent("rulefile")
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				added, err := Load(path, store)
				if err != nil {
					log.WithError(err).Warn("seed rules reload failed")
					continue
				}
				log.WithField("added", added).Info("seed rules reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("rules file watcher error")
			}
		}
	}()

	return nil
}
