// Package config loads a node's TOML configuration file, grounded in
// router/configfile.go's use of BurntSushi/toml.
package config

import (
	"errors"
	"io/ioutil"

	"github.com/BurntSushi/toml"
)

// NodeConfig is one node's full startup configuration.
type NodeConfig struct {
	Name     string `toml:"name"`
	BindAddr string `toml:"bind-addr"`
	BindPort int    `toml:"bind-port"`
	DataDir  string `toml:"data-dir"`

	EtcdEndpoints []string `toml:"etcd-endpoints"`

	ShardCount        int   `toml:"shard-count"`
	ReplicationFactor int   `toml:"replication-factor"`
	RecencyFloor      int64 `toml:"recency-floor"`

	Join []string `toml:"join"`
}

// SetDefaults fills in every field a freshly-zero NodeConfig needs to
// be runnable, the way router.Config.SetDefaults does for the
// teacher's cluster handle.
func (c *NodeConfig) SetDefaults() {
	if c.BindPort == 0 {
		c.BindPort = 8084
	}
	if c.DataDir == "" {
		c.DataDir = "/var/opt/rdbshard/data"
	}
	if c.ShardCount == 0 {
		c.ShardCount = 1
	}
	if c.ReplicationFactor == 0 {
		c.ReplicationFactor = 1
	}
}

func (c *NodeConfig) Validate() error {
	if c.ShardCount <= 0 {
		return errors.New("config: shard-count must be positive")
	}
	if c.ReplicationFactor <= 0 {
		return errors.New("config: replication-factor must be positive")
	}
	if len(c.EtcdEndpoints) == 0 {
		return errors.New("config: at least one etcd-endpoints entry is required")
	}
	return nil
}

// Load reads and decodes a NodeConfig from path, applying defaults and
// validating the result.
func Load(path string) (NodeConfig, error) {
	var c NodeConfig
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return c, err
	}
	if _, err := toml.Decode(string(raw), &c); err != nil {
		return c, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
