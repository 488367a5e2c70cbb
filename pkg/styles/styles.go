// Package styles supplies the static style-name lookup table consulted when
// classifying top-level object keys during parameter reduction. The table is
// data, not logic: it ships as embedded YAML and callers may extend it at
// runtime for host-specific style vocabularies.
package styles

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var styleData []byte

type styleFile struct {
	Styles []string `yaml:"styles"`
}

var (
	mu    sync.RWMutex
	table map[string]struct{}
)

// load parses the embedded table. Called at first use under mu.
func load() {
	if table != nil {
		return
	}
	var f styleFile
	if err := yaml.Unmarshal(styleData, &f); err != nil {
		panic(fmt.Sprintf("styles: embedded table is invalid: %v", err))
	}
	table = make(map[string]struct{}, len(f.Styles))
	for _, name := range f.Styles {
		table[name] = struct{}{}
	}
}

// IsStyleName reports whether name is a recognized presentation-style key.
func IsStyleName(name string) bool {
	mu.RLock()
	loaded := table != nil
	if loaded {
		_, ok := table[name]
		mu.RUnlock()
		return ok
	}
	mu.RUnlock()

	mu.Lock()
	load()
	_, ok := table[name]
	mu.Unlock()
	return ok
}

// Register adds host-specific names to the lookup table.
func Register(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	load()
	for _, name := range names {
		table[name] = struct{}{}
	}
}

// Reset restores the embedded table, discarding registered names.
// Intended as a test teardown hook.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	table = nil
}

// Names returns the current table contents, sorted.
func Names() []string {
	mu.Lock()
	load()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	mu.Unlock()
	sort.Strings(names)
	return names
}
