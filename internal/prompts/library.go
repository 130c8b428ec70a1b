package prompts

import (
	"sort"
	"sync"
)

// Library is a name → Template registry. Safe for concurrent use.
type Library struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewLibrary returns a library holding the given templates
func NewLibrary(templates ...Template) *Library {
	l := &Library{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		l.Register(t)
	}
	return l
}

// Register adds t, replacing any template with the same name
func (l *Library) Register(t Template) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[t.Name()] = t
}

// Lookup returns the template registered under name
func (l *Library) Lookup(name string) (Template, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.templates[name]
	return t, ok
}

// Names returns the registered names in sorted order
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description of a named template, when it has one
func (l *Library) Describe(name string) string {
	t, ok := l.Lookup(name)
	if !ok {
		return ""
	}
	if d, ok := t.(interface{ Description() string }); ok {
		return d.Description()
	}
	return builtinDescriptions[name]
}
