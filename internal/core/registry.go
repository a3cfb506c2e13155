package core

import (
	"fmt"
	"sort"
	"sync"
)

type FactoryFunc func() Converter

var (
	mu         sync.RWMutex
	converters = map[string]FactoryFunc{}
)

// RegisterConverter makes a converter available under name. Registering a
// name twice replaces the earlier factory.
func RegisterConverter(name string, f FactoryFunc) {
	mu.Lock()
	defer mu.Unlock()
	converters[name] = f
}

func BuildConverter(name string) (Converter, error) {
	mu.RLock()
	f, ok := converters[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown message converter: %s", name)
	}
	return f(), nil
}

func HasConverter(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := converters[name]
	return ok
}

// Converters lists registered names, sorted.
func Converters() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(converters))
	for n := range converters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
