// Package config loads node configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/esteve/rmw-libp2p/internal/core/network"
)

// Config is the on-disk configuration for one node.
type Config struct {
	NodeName  string    `yaml:"node_name"`
	Transport Transport `yaml:"transport"`
}

// Transport mirrors the libp2p transport options.
type Transport struct {
	ListenAddrs     []string `yaml:"listen_addrs"`
	Bootstrap       []string `yaml:"bootstrap"`
	Rendezvous      string   `yaml:"rendezvous"`
	EnableMDNS      bool     `yaml:"enable_mdns"`
	IdentityKeyFile string   `yaml:"identity_key_file"`
}

// Default returns the configuration used when no file is given: a random
// TCP port and local mdns discovery.
func Default() *Config {
	return &Config{
		NodeName: "rmw_node",
		Transport: Transport{
			ListenAddrs: []string{"/ip4/0.0.0.0/tcp/0"},
			Rendezvous:  "rmw-libp2p",
			EnableMDNS:  true,
		},
	}
}

// Load reads and parses path, filling unset fields from Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.NodeName == "" {
		cfg.NodeName = Default().NodeName
	}
	return cfg, nil
}

// Libp2pOptions converts the transport section into transport options.
func (t Transport) Libp2pOptions() network.Libp2pOptions {
	return network.Libp2pOptions{
		ListenAddrs:     t.ListenAddrs,
		Bootstrap:       t.Bootstrap,
		Rendezvous:      t.Rendezvous,
		EnableMDNS:      t.EnableMDNS,
		IdentityKeyFile: t.IdentityKeyFile,
	}
}
