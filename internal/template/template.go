// Package template fills double-brace placeholders in the order
// confirmation document.
package template

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sync"
)

//go:embed order_confirmation.html
var defaultTemplate string

// Default returns the built-in confirmation template.
func Default() string {
	return defaultTemplate
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Substitute replaces every {{ name }} in tpl with values[name]. Names
// with no value become the empty string. Values are inserted verbatim, so
// callers escape anything that came from outside.
func Substitute(tpl string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		return values[name]
	})
}

// Placeholders lists the distinct placeholder names in tpl in order of
// first appearance.
func Placeholders(tpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(tpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Loader reads the template on first use and caches it. A failed read is
// not cached, so the next Load tries the file again.
type Loader struct {
	path   string
	mu     sync.Mutex
	tpl    string
	loaded bool
}

// NewLoader returns a loader for path. An empty path selects the embedded
// default.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the cached template text.
func (l *Loader) Load() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.tpl, nil
	}
	if l.path == "" {
		l.tpl, l.loaded = defaultTemplate, true
		return l.tpl, nil
	}
	b, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", l.path, err)
	}
	l.tpl, l.loaded = string(b), true
	return l.tpl, nil
}
