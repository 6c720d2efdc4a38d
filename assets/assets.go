package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed scripts
var ScriptFS embed.FS

const ext = ".jsyn"

var (
	scripts  map[string]string
	initOnce sync.Once
)

// loadAllScripts reads every embedded example script into memory
func loadAllScripts() {
	scripts = make(map[string]string)

	entries, err := fs.ReadDir(ScriptFS, "scripts")
	if err != nil {
		slog.Error("Failed to read scripts directory", slog.Any("error", err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ext {
			continue
		}
		data, err := ScriptFS.ReadFile("scripts/" + entry.Name())
		if err != nil {
			slog.Warn("Failed to read script", slog.String("file", entry.Name()), slog.Any("error", err))
			continue
		}
		scripts[strings.TrimSuffix(entry.Name(), ext)] = string(data)
	}

	slog.Debug("Loaded example scripts", slog.Int("count", len(scripts)))
}

// Script returns the source of the named example script
func Script(name string) (string, error) {
	initOnce.Do(loadAllScripts)

	src, ok := scripts[strings.TrimSuffix(name, ext)]
	if !ok {
		return "", fmt.Errorf("unknown example %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return src, nil
}

// Names lists the embedded example scripts
func Names() []string {
	initOnce.Do(loadAllScripts)

	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
