package router

import (
	"strings"
	"sync"

	"github.com/airsstack/airssys/wasmhost"
)

// SubscriberManager tracks which components subscribe to which topic
// patterns and resolves incoming topics to the set of matching
// subscribers, per spec.md §4.5's "*" (single segment) / "#" (multi
// segment) pattern matching over "."-separated topic segments.
type SubscriberManager struct {
	mu            sync.RWMutex
	byComponent   map[wasmhost.ComponentId][]string
	byPattern     map[string]map[wasmhost.ComponentId]struct{}
}

func NewSubscriberManager() *SubscriberManager {
	return &SubscriberManager{
		byComponent: make(map[wasmhost.ComponentId][]string),
		byPattern:   make(map[string]map[wasmhost.ComponentId]struct{}),
	}
}

// Subscribe registers id's interest in pattern (a literal topic or one
// containing "*"/"#" wildcards).
func (m *SubscriberManager) Subscribe(id wasmhost.ComponentId, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byComponent[id] = append(m.byComponent[id], pattern)
	if m.byPattern[pattern] == nil {
		m.byPattern[pattern] = make(map[wasmhost.ComponentId]struct{})
	}
	m.byPattern[pattern][id] = struct{}{}
}

// Unsubscribe removes id's interest in pattern.
func (m *SubscriberManager) Unsubscribe(id wasmhost.ComponentId, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if subs := m.byPattern[pattern]; subs != nil {
		delete(subs, id)
		if len(subs) == 0 {
			delete(m.byPattern, pattern)
		}
	}
	patterns := m.byComponent[id]
	for i, p := range patterns {
		if p == pattern {
			m.byComponent[id] = append(patterns[:i], patterns[i+1:]...)
			break
		}
	}
}

// UnsubscribeAll removes every pattern id is subscribed to.
func (m *SubscriberManager) UnsubscribeAll(id wasmhost.ComponentId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byComponent[id] {
		if subs := m.byPattern[p]; subs != nil {
			delete(subs, id)
			if len(subs) == 0 {
				delete(m.byPattern, p)
			}
		}
	}
	delete(m.byComponent, id)
}

// Matching returns every component subscribed to a pattern that matches
// topic.
func (m *SubscriberManager) Matching(topic string) []wasmhost.ComponentId {
	segments := strings.Split(topic, ".")

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[wasmhost.ComponentId]struct{})
	var out []wasmhost.ComponentId
	for pattern, subs := range m.byPattern {
		if !topicMatches(pattern, segments) {
			continue
		}
		for id := range subs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// topicMatches implements the "."-segment pattern match: "*" consumes
// exactly one segment, "#" consumes zero or more remaining segments (and
// must be the pattern's final token), any other token must equal the
// corresponding topic segment exactly.
func topicMatches(pattern string, segments []string) bool {
	patternSegs := strings.Split(pattern, ".")
	i := 0
	for ; i < len(patternSegs); i++ {
		p := patternSegs[i]
		if p == "#" {
			return true // matches the rest, regardless of remaining length
		}
		if i >= len(segments) {
			return false
		}
		if p == "*" {
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return i == len(segments)
}
