package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

// ScriptExt is the extension of script files under <dataDir>/scripts.
const ScriptExt = ".asl"

// FileScripts reads script text from the data directory and keeps recently
// loaded scripts in memory.
type FileScripts struct {
	dir    string
	cache  cache.Cache[string, string]
	logger *slog.Logger
}

// NewFileScripts serves scripts from <dataDir>/scripts. A zero ttl keeps
// cached text until it is invalidated.
func NewFileScripts(dataDir string, ttl time.Duration, logger *slog.Logger) *FileScripts {
	if dataDir == "" {
		dataDir = "./data"
	}
	c := cache.NewCache[string, string]().WithMaxKeys(512).WithLRU()
	if ttl > 0 {
		c = c.WithTTL(ttl)
	}
	return &FileScripts{
		dir:    filepath.Join(dataDir, "scripts"),
		cache:  c,
		logger: logger,
	}
}

func (f *FileScripts) path(name string) (string, error) {
	name = strings.TrimSuffix(name, ScriptExt)
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("invalid script name: %q", name)
	}
	return filepath.Join(f.dir, name+ScriptExt), nil
}

// Load returns the text of the named script.
func (f *FileScripts) Load(name string) (string, error) {
	path, err := f.path(name)
	if err != nil {
		return "", err
	}
	if text, ok := f.cache.Get(path); ok {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("script not found: %s", name)
		}
		return "", fmt.Errorf("failed to read script file: %w", err)
	}
	text := string(data)
	f.cache.Set(path, text, 0)
	f.logger.Debug("Loaded script", "name", name, "bytes", len(data))
	return text, nil
}

// Invalidate drops the cached text of name, or of every script when name
// is empty.
func (f *FileScripts) Invalidate(name string) {
	if name == "" {
		f.cache.Purge()
		return
	}
	if path, err := f.path(name); err == nil {
		f.cache.Invalidate(path)
	}
}

// List returns the names of all scripts in the directory tree.
func (f *FileScripts) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ScriptExt {
			return nil
		}
		rel, err := filepath.Rel(f.dir, path)
		if err != nil {
			return nil
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), ScriptExt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
