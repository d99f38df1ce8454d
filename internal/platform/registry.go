// Package platform maps a source name from config to its Runner.
package platform

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Factory func(cfg config.Config) crawler.Runner

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
	canonical = map[string]string{}
)

// Register binds name and its aliases to factory. It panics on a duplicate,
// so registration belongs in package init.
func Register(name string, aliases []string, factory Factory) {
	if factory == nil {
		panic("platform: factory is nil")
	}
	primary := normalize(name)
	keys := append([]string{name}, aliases...)
	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		n := normalize(k)
		if n == "" {
			continue
		}
		if _, exists := factories[n]; exists {
			panic(fmt.Sprintf("platform: duplicate register: %s", n))
		}
		factories[n] = factory
		canonical[n] = primary
	}
}

func New(name string, cfg config.Config) (crawler.Runner, error) {
	n := normalize(name)
	mu.RLock()
	f := factories[n]
	mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown platform: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(cfg), nil
}

// Names lists the primary names, without aliases.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	uniq := map[string]struct{}{}
	for _, p := range canonical {
		uniq[p] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for k := range uniq {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
