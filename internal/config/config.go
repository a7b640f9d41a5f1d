// Package config loads the node's startup configuration, the way
// cmd/drand and common/key load TOML files.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Adapter describes one secondary chain this node also serves,
// mirroring.
type Adapter struct {
	ID        uint64 `toml:"id"`
	IDAddress string `toml:"id_address"`
	Name      string `toml:"name"`
	Endpoint  string `toml:"endpoint"`
}

// Config is the node's startup configuration, loaded once.
type Config struct {
	IDAddress          string    `toml:"id_address"`
	NodeRPCEndpoint    string    `toml:"node_rpc_endpoint"`
	ControllerEndpoint string    `toml:"controller_endpoint"`
	Adapters           []Adapter `toml:"adapters"`
}

// Load decodes a TOML file at path into a Config and validates the
// required fields are present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var c Config
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks the configuration carries everything Deploy needs.
func (c *Config) Validate() error {
	if c.IDAddress == "" {
		return fmt.Errorf("config: id_address is required")
	}
	if c.NodeRPCEndpoint == "" {
		return fmt.Errorf("config: node_rpc_endpoint is required")
	}
	if c.ControllerEndpoint == "" {
		return fmt.Errorf("config: controller_endpoint is required")
	}
	seen := make(map[uint64]bool, len(c.Adapters))
	for _, a := range c.Adapters {
		if seen[a.ID] {
			return fmt.Errorf("config: duplicate adapter id %d", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}
