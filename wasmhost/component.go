// Package wasmhost hosts WebAssembly components as RT actors, mediated by
// OSL for every privileged operation a component attempts. It defines the
// shared entity types (ComponentId, ComponentMetadata, ComponentMessage,
// health status) used across its subpackages (engine, registry, router,
// messaging, actor, capability, trust, manifest).
package wasmhost

import (
	"fmt"
	"strings"
)

// ComponentId canonically identifies one component instance as
// (namespace, name, instance), grounded on spec.md §3.4's
// "canonicalizable to a slash-separated string."
type ComponentId struct {
	Namespace string
	Name      string
	Instance  string
}

// NewComponentId constructs a ComponentId from its three parts.
func NewComponentId(namespace, name, instance string) ComponentId {
	return ComponentId{Namespace: namespace, Name: name, Instance: instance}
}

// ParseComponentId parses a canonical "namespace/name/instance" string.
func ParseComponentId(s string) (ComponentId, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ComponentId{}, fmt.Errorf("wasmhost: invalid component id %q: want namespace/name/instance", s)
	}
	return ComponentId{Namespace: parts[0], Name: parts[1], Instance: parts[2]}, nil
}

// String returns the canonical slash-separated form.
func (c ComponentId) String() string {
	return c.Namespace + "/" + c.Name + "/" + c.Instance
}

// ResourceLimits bounds one component instance's engine resource usage.
type ResourceLimits struct {
	MaxMemoryBytes     uint64
	MaxFuelPerExecution uint64
	MaxExecutionMs     int64
	MaxStorageBytes    uint64
}

// ComponentMetadata describes a component package at install time.
type ComponentMetadata struct {
	Name                 string
	Version              string
	Author               string
	Description          string
	RequiredCapabilities []string
	Limits               ResourceLimits
}

// HealthStatus reports a component's current health.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Degraded
	Unhealthy
)

// HealthReport pairs a HealthStatus with an optional human-readable
// reason, populated for Degraded/Unhealthy.
type HealthReport struct {
	Status HealthStatus
	Reason string
}

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
