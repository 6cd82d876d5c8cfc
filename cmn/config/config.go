// Package config holds the process-wide configuration object and its
// atomic-swap global owner, grounded on the teacher's cmn.GCO
// (globalConfigOwner) pattern: a single atomic.Value holding an immutable
// *Config, replaced wholesale on reload rather than mutated in place.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Mailbox holds the default mailbox sizing used by rt/system when a caller
// does not override it via the actor builder.
type Mailbox struct {
	DefaultCapacity int    `json:"default_capacity"`
	Backpressure    string `json:"backpressure"` // error|drop|drop_oldest|block
}

// Supervisor holds default restart-window and backoff configuration used
// when a ChildSpec does not override it.
type Supervisor struct {
	MaxRestarts     int           `json:"max_restarts"`
	TimeWindow      time.Duration `json:"time_window"`
	BackoffBase     time.Duration `json:"backoff_base"`
	BackoffMax      time.Duration `json:"backoff_max"`
	StartTimeout    time.Duration `json:"start_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Security holds OSL's default security posture.
type Security struct {
	// AllowRequireAdditionalAuth, when false (the default), makes a
	// RequireAdditionalAuth policy decision equivalent to Deny instead of
	// being permitted with a log note. See spec.md §9 Open Questions.
	AllowRequireAdditionalAuth bool `json:"allow_require_additional_auth"`
	AuditDBPath                string `json:"audit_db_path"`
}

// WasmHost holds component-runtime defaults.
type WasmHost struct {
	MaxActors            int           `json:"max_actors"`
	RateLimitPerSecond   int           `json:"rate_limit_per_second"`
	RateLimitIdleGC      time.Duration `json:"rate_limit_idle_gc"`
	ApprovalDBPath        string        `json:"approval_db_path"`
	DevMode               bool          `json:"dev_mode"`
	DefaultExecutionMs    int64         `json:"default_execution_ms"`
	DefaultFuelPerExecute uint64        `json:"default_fuel_per_execute"`
}

// Config is the immutable, process-wide configuration snapshot.
type Config struct {
	Mailbox    Mailbox    `json:"mailbox"`
	Supervisor Supervisor `json:"supervisor"`
	Security   Security   `json:"security"`
	WasmHost   WasmHost   `json:"wasmhost"`
}

// Validate reports the first structural problem found in c, if any.
func (c *Config) Validate() error {
	if c.Mailbox.DefaultCapacity <= 0 {
		return fmt.Errorf("config: mailbox.default_capacity must be > 0")
	}
	switch c.Mailbox.Backpressure {
	case "error", "drop", "drop_oldest", "block":
	default:
		return fmt.Errorf("config: unknown mailbox.backpressure %q", c.Mailbox.Backpressure)
	}
	if c.Supervisor.MaxRestarts < 0 {
		return fmt.Errorf("config: supervisor.max_restarts must be >= 0")
	}
	if c.Supervisor.TimeWindow <= 0 {
		return fmt.Errorf("config: supervisor.time_window must be > 0")
	}
	if c.WasmHost.MaxActors <= 0 {
		return fmt.Errorf("config: wasmhost.max_actors must be > 0")
	}
	return nil
}

// Default returns the built-in configuration used when no config file is
// supplied, matching the defaults named throughout spec.md (bounded
// mailbox capacity 1000, rate limit 1000 msg/s, 5-minute idle GC, etc).
func Default() *Config {
	return &Config{
		Mailbox: Mailbox{
			DefaultCapacity: 1000,
			Backpressure:    "block",
		},
		Supervisor: Supervisor{
			MaxRestarts:     3,
			TimeWindow:      60 * time.Second,
			BackoffBase:     100 * time.Millisecond,
			BackoffMax:      30 * time.Second,
			StartTimeout:    5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: Security{
			AllowRequireAdditionalAuth: false,
			AuditDBPath:                "",
		},
		WasmHost: WasmHost{
			MaxActors:             10000,
			RateLimitPerSecond:    1000,
			RateLimitIdleGC:       5 * time.Minute,
			ApprovalDBPath:        "",
			DevMode:               false,
			DefaultExecutionMs:    5000,
			DefaultFuelPerExecute: 10_000_000,
		},
	}
}

// owner is the global config holder: an atomic pointer swapped wholesale on
// Reload, never mutated in place, matching cmn.globalConfigOwner.
type owner struct {
	v atomic.Value // holds *Config
}

// GCO is the process-wide global config owner, grounded on the teacher's
// exported cmn.GCO.
var GCO = &owner{}

func init() {
	GCO.v.Store(Default())
}

// Get returns the current configuration snapshot. Safe for concurrent use.
func (o *owner) Get() *Config {
	return o.v.Load().(*Config)
}

// Put atomically replaces the current configuration. Callers should
// Validate() before Put.
func (o *owner) Put(c *Config) {
	o.v.Store(c)
}

// LoadFile reads a JSON configuration file, validates it, and installs it
// via Put. On any error the previous configuration is left untouched.
func (o *owner) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	o.Put(c)
	return nil
}
