// Package config loads the world topology from YAML and builds the
// coordinator hierarchy it describes.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dreamware/worldmesh/internal/cluster"
	"github.com/dreamware/worldmesh/internal/coordinator"
	"github.com/dreamware/worldmesh/internal/geom"
	"github.com/dreamware/worldmesh/internal/shard"
)

type Config struct {
	CoordinatorID string            `yaml:"coordinator_id"`
	Clusters      []ClusterSpec     `yaml:"clusters"`
	Schemas       map[string]string `yaml:"schemas,omitempty"`
}

type ClusterSpec struct {
	ID     string      `yaml:"id"`
	Min    geom.Vec3   `yaml:"min"`
	Max    geom.Vec3   `yaml:"max"`
	Shards []ShardSpec `yaml:"shards,omitempty"`
}

type ShardSpec struct {
	ID  string    `yaml:"id"`
	Min geom.Vec3 `yaml:"min"`
	Max geom.Vec3 `yaml:"max"`
}

// Load reads the topology at path. An empty path yields the default
// single-cluster world.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = Config{}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("topology.yaml: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("topology.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		CoordinatorID: "coordinator",
		Clusters: []ClusterSpec{
			{
				ID:  "world",
				Min: geom.Vec3{X: -1000, Y: -1000, Z: -1000},
				Max: geom.Vec3{X: 1000, Y: 1000, Z: 1000},
				Shards: []ShardSpec{
					{
						ID:  "world-0",
						Min: geom.Vec3{X: -1000, Y: -1000, Z: -1000},
						Max: geom.Vec3{X: 1000, Y: 1000, Z: 1000},
					},
				},
			},
		},
	}
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.CoordinatorID) == "" {
		c.CoordinatorID = "coordinator"
	}
}

func (c Config) Validate() error {
	if len(c.Clusters) == 0 {
		return fmt.Errorf("clusters must not be empty")
	}
	seenClusters := map[string]bool{}
	seenShards := map[string]bool{}
	for _, cs := range c.Clusters {
		if strings.TrimSpace(cs.ID) == "" {
			return fmt.Errorf("cluster id must not be empty")
		}
		if seenClusters[cs.ID] {
			return fmt.Errorf("duplicate cluster id: %s", cs.ID)
		}
		seenClusters[cs.ID] = true
		if _, err := geom.NewRegion(cs.Min, cs.Max); err != nil {
			return fmt.Errorf("cluster %s: %w", cs.ID, err)
		}
		for _, ss := range cs.Shards {
			if strings.TrimSpace(ss.ID) == "" {
				return fmt.Errorf("cluster %s has empty shard id", cs.ID)
			}
			if seenShards[ss.ID] {
				return fmt.Errorf("duplicate shard id: %s", ss.ID)
			}
			seenShards[ss.ID] = true
			if _, err := geom.NewRegion(ss.Min, ss.Max); err != nil {
				return fmt.Errorf("shard %s: %w", ss.ID, err)
			}
		}
	}
	for eventType, path := range c.Schemas {
		if strings.TrimSpace(eventType) == "" || strings.TrimSpace(path) == "" {
			return fmt.Errorf("schemas entries must map an event type to a file path")
		}
	}
	return nil
}

// Build constructs the coordinator hierarchy the config describes. The
// config must have passed Validate.
func (c Config) Build() (*coordinator.Coordinator, error) {
	co := coordinator.New(c.CoordinatorID)
	for _, cs := range c.Clusters {
		region, err := geom.NewRegion(cs.Min, cs.Max)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: %w", cs.ID, err)
		}
		co.AddCluster(cluster.New(cs.ID, region))
		for _, ss := range cs.Shards {
			sr, err := geom.NewRegion(ss.Min, ss.Max)
			if err != nil {
				return nil, fmt.Errorf("shard %s: %w", ss.ID, err)
			}
			if err := co.PlaceShard(cs.ID, shard.New(ss.ID, sr)); err != nil {
				return nil, fmt.Errorf("shard %s: %w", ss.ID, err)
			}
		}
	}
	return co, nil
}
