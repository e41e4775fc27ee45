package foreign

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrBackendExists   = errors.New("foreign: backend already registered")
	ErrBackendNil      = errors.New("foreign: backend factory is nil")
	ErrBackendNotFound = errors.New("foreign: backend not found")
	ErrInvalidName     = errors.New("foreign: invalid backend name")
)

// Options are passed through to a backend factory.
type Options struct {
	InitialWords int
	Stress       bool
}

// Factory builds an unstarted backend.
type Factory func(opts Options) Runtime

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a backend factory under a stable name.
func Register(name string, f Factory) error {
	if f == nil {
		return ErrBackendNil
	}
	name = strings.TrimSpace(name)
	if !isValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}
	registry[name] = f
	return nil
}

// MustRegister is Register for package init blocks.
func MustRegister(name string, f Factory) {
	if err := Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve builds the backend registered under name.
func Resolve(name string, opts Options) (Runtime, error) {
	mu.RLock()
	f, ok := registry[strings.TrimSpace(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	return f(opts), nil
}

// Names returns registered backend names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	list := make([]string, 0, len(registry))
	for name := range registry {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if (i == 0 || i == len(name)-1) && isSep {
			return false
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
