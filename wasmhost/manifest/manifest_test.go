package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/wasmhost/manifest"
)

const sampleTOML = `
[component]
name = "widget"
version = "1.0.0"
author = "acme"
description = "a test component"
required_capabilities = ["fs.read", "net.outbound"]

[limits]
max_memory_bytes = 16777216
max_fuel_per_execution = 1000000
max_execution_ms = 500
max_storage_bytes = 1048576

[permissions.filesystem]
read = ["/data/**"]
write = ["/data/out/*"]

[permissions.network]
inbound = [8080]

[[permissions.network.outbound]]
host = "*.example.com"
port = 443

[permissions.storage]
namespaces = ["widget-ns"]
max_size_mb = 64
`

func TestParseManifest(t *testing.T) {
	meta, perms, err := manifest.Parse(sampleTOML)
	require.NoError(t, err)

	assert.Equal(t, "widget", meta.Name)
	assert.Equal(t, "1.0.0", meta.Version)
	assert.Equal(t, []string{"fs.read", "net.outbound"}, meta.RequiredCapabilities)
	assert.EqualValues(t, 16777216, meta.Limits.MaxMemoryBytes)
	assert.EqualValues(t, 500, meta.Limits.MaxExecutionMs)

	assert.Equal(t, []string{"/data/**"}, perms.Filesystem.Read)
	require.Len(t, perms.Network.Outbound, 1)
	assert.Equal(t, "*.example.com", perms.Network.Outbound[0].Host)
	assert.Equal(t, 443, perms.Network.Outbound[0].Port)
	assert.Equal(t, []int{8080}, perms.Network.Inbound)
	assert.Equal(t, []string{"widget-ns"}, perms.Storage.Namespaces)
	assert.Equal(t, 64, perms.Storage.MaxSizeMB)
}

func TestParseManifestMalformed(t *testing.T) {
	_, _, err := manifest.Parse("this is not [ valid toml")
	assert.Error(t, err)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, _, err := manifest.Load("/nonexistent/path/manifest.toml")
	assert.Error(t, err)
}
