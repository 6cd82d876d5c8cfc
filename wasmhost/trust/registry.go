package trust

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// rule pairs a source-descriptor prefix with the TrustLevel it resolves
// to, as loaded from the registry's configuration file.
type rule struct {
	Kind   SourceKind `json:"kind"`
	Prefix string     `json:"prefix"`
	Level  TrustLevel `json:"level"`
}

// configFile is the on-disk JSON shape TrustRegistry loads, per spec.md
// §4.7's "loaded from a configuration file."
type configFile struct {
	DevMode bool   `json:"dev_mode"`
	Rules   []rule `json:"rules"`
}

// Registry maps source descriptors to TrustLevel by longest-prefix match,
// read-mostly per spec.md §5's "Trust registry: read-mostly; writes take
// an exclusive lock."
type Registry struct {
	mu      sync.RWMutex
	devMode bool
	rules   []rule
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Load replaces the registry's rules from a JSON configuration file.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("trust: load registry: %w", err)
	}
	return r.LoadBytes(data)
}

// LoadBytes replaces the registry's rules from JSON bytes.
func (r *Registry) LoadBytes(data []byte) error {
	var cfg configFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("trust: parse registry config: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devMode = cfg.DevMode
	r.rules = cfg.Rules
	return nil
}

// SetDevMode toggles the registry's global DevMode override (an
// administrator action, taking the exclusive lock).
func (r *Registry) SetDevMode(on bool) {
	r.mu.Lock()
	r.devMode = on
	r.mu.Unlock()
}

// AddRule installs (or appends) a trust rule (an administrator action).
func (r *Registry) AddRule(kind SourceKind, prefix string, level TrustLevel) {
	r.mu.Lock()
	r.rules = append(r.rules, rule{Kind: kind, Prefix: prefix, Level: level})
	r.mu.Unlock()
}

// Resolve classifies source, honoring a global DevMode override before
// consulting the rule table.
func (r *Registry) Resolve(source ComponentSource) TrustLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.devMode {
		return DevMode
	}
	best := Unknown
	bestLen := -1
	for _, ru := range r.rules {
		if ru.Kind != source.Kind {
			continue
		}
		if !strings.HasPrefix(source.Value, ru.Prefix) {
			continue
		}
		if len(ru.Prefix) > bestLen {
			best = ru.Level
			bestLen = len(ru.Prefix)
		}
	}
	return best
}
