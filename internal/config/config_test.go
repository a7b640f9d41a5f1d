package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "randcast-node.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
id_address = "0x1111111111111111111111111111111111111111"
node_rpc_endpoint = "127.0.0.1:5001"
controller_endpoint = "127.0.0.1:50051"

[[adapters]]
id = 1
id_address = "0x2222222222222222222222222222222222222222"
name = "adapter-a"
endpoint = "127.0.0.1:6001"
`)

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5001", c.NodeRPCEndpoint)
	require.Len(t, c.Adapters, 1)
	assert.Equal(t, "adapter-a", c.Adapters[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate_RequiresIDAddress(t *testing.T) {
	path := writeConfig(t, `
node_rpc_endpoint = "127.0.0.1:5001"
controller_endpoint = "127.0.0.1:50051"
`)
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "id_address")
}

func TestValidate_RejectsDuplicateAdapterIDs(t *testing.T) {
	path := writeConfig(t, `
id_address = "0x1111111111111111111111111111111111111111"
node_rpc_endpoint = "127.0.0.1:5001"
controller_endpoint = "127.0.0.1:50051"

[[adapters]]
id = 1
id_address = "0x2"
name = "a"
endpoint = "127.0.0.1:6001"

[[adapters]]
id = 1
id_address = "0x3"
name = "b"
endpoint = "127.0.0.1:6002"
`)
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "duplicate adapter id")
}
