// Package manifest parses a component package's install-time manifest
// file, grounded on the teacher's cmn/jsp config-file loading idiom but
// using TOML (per spec.md §6) via github.com/BurntSushi/toml — an
// enrichment from the wider example pack, since the teacher's own
// manifests are JSON.
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/capability"
)

// File is the on-disk TOML shape of a component manifest.
type File struct {
	Component struct {
		Name                 string   `toml:"name"`
		Version              string   `toml:"version"`
		Author               string   `toml:"author"`
		Description          string   `toml:"description"`
		RequiredCapabilities []string `toml:"required_capabilities"`
	} `toml:"component"`

	Limits struct {
		MaxMemoryBytes      uint64 `toml:"max_memory_bytes"`
		MaxFuelPerExecution uint64 `toml:"max_fuel_per_execution"`
		MaxExecutionMs      int64  `toml:"max_execution_ms"`
		MaxStorageBytes     uint64 `toml:"max_storage_bytes"`
	} `toml:"limits"`

	Permissions struct {
		Filesystem struct {
			Read   []string `toml:"read"`
			Write  []string `toml:"write"`
			Delete []string `toml:"delete"`
			List   []string `toml:"list"`
		} `toml:"filesystem"`
		Network struct {
			Outbound []struct {
				Host string `toml:"host"`
				Port int    `toml:"port"`
			} `toml:"outbound"`
			Inbound []int `toml:"inbound"`
		} `toml:"network"`
		Storage struct {
			Namespaces []string `toml:"namespaces"`
			MaxSizeMB  int      `toml:"max_size_mb"`
		} `toml:"storage"`
	} `toml:"permissions"`
}

// Load parses the TOML manifest at path into (ComponentMetadata,
// PermissionManifest).
func Load(path string) (wasmhost.ComponentMetadata, capability.PermissionManifest, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return wasmhost.ComponentMetadata{}, capability.PermissionManifest{}, fmt.Errorf("manifest: decode %s: %w", path, err)
	}
	return fromFile(f), permissionsFromFile(f), nil
}

// Parse decodes raw TOML bytes (as a string) into (ComponentMetadata,
// PermissionManifest), for callers loading a manifest embedded in a
// component bundle rather than a standalone file.
func Parse(data string) (wasmhost.ComponentMetadata, capability.PermissionManifest, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return wasmhost.ComponentMetadata{}, capability.PermissionManifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	return fromFile(f), permissionsFromFile(f), nil
}

func fromFile(f File) wasmhost.ComponentMetadata {
	return wasmhost.ComponentMetadata{
		Name:                 f.Component.Name,
		Version:              f.Component.Version,
		Author:               f.Component.Author,
		Description:          f.Component.Description,
		RequiredCapabilities: f.Component.RequiredCapabilities,
		Limits: wasmhost.ResourceLimits{
			MaxMemoryBytes:      f.Limits.MaxMemoryBytes,
			MaxFuelPerExecution: f.Limits.MaxFuelPerExecution,
			MaxExecutionMs:      f.Limits.MaxExecutionMs,
			MaxStorageBytes:     f.Limits.MaxStorageBytes,
		},
	}
}

func permissionsFromFile(f File) capability.PermissionManifest {
	outbound := make([]capability.NetworkRule, 0, len(f.Permissions.Network.Outbound))
	for _, o := range f.Permissions.Network.Outbound {
		outbound = append(outbound, capability.NetworkRule{Host: o.Host, Port: o.Port})
	}
	return capability.PermissionManifest{
		Filesystem: capability.FilesystemRules{
			Read:   f.Permissions.Filesystem.Read,
			Write:  f.Permissions.Filesystem.Write,
			Delete: f.Permissions.Filesystem.Delete,
			List:   f.Permissions.Filesystem.List,
		},
		Network: capability.NetworkRules{
			Outbound: outbound,
			Inbound:  f.Permissions.Network.Inbound,
		},
		Storage: capability.StorageRules{
			Namespaces: f.Permissions.Storage.Namespaces,
			MaxSizeMB:  f.Permissions.Storage.MaxSizeMB,
		},
	}
}
