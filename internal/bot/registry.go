// internal/bot/registry.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

// HandlerFunc handles one interaction. Returned errors are answered by the router.
type HandlerFunc func(ctx context.Context, in *Interaction) error

// Registry maps (kind, name) to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]map[string]HandlerFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind]map[string]HandlerFunc)}
}

// Register adds a handler. Registering the same name twice is an error.
func (r *Registry) Register(kind Kind, name string, h HandlerFunc) error {
	if name == "" || h == nil {
		return errors.New("handler name and func are required")
	}
	if strings.Contains(name, ui.Separator) {
		return fmt.Errorf("handler name %q must not contain %q", name, ui.Separator)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers[kind] == nil {
		r.handlers[kind] = make(map[string]HandlerFunc)
	}
	if _, exists := r.handlers[kind][name]; exists {
		return fmt.Errorf("duplicate %s handler: %s", kind, name)
	}
	r.handlers[kind][name] = h
	return nil
}

// Lookup returns the handler for kind and name.
func (r *Registry) Lookup(kind Kind, name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind][name]
	return h, ok
}

// Names returns the registered names of kind, sorted.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers[kind]))
	for name := range r.handlers[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every listed action has a handler of kind.
func (r *Registry) Validate(kind Kind, actions ...string) error {
	var missing []string
	for _, a := range actions {
		if _, ok := r.Lookup(kind, a); !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no %s handler for: %s", kind, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateScreen checks that every button on screen routes to a handler.
func (r *Registry) ValidateScreen(screen ui.Screen) error {
	actions := make([]string, 0)
	for _, b := range screen.Buttons() {
		action, _ := ui.ParseID(b.ID)
		actions = append(actions, action)
	}
	return r.Validate(KindComponent, actions...)
}
