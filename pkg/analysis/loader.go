package analysis

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
	"github.com/gilchrisn/reaction-network-analysis/pkg/records"
)

// RecordOptions returns the normalization options selected by the configuration
func (c *Config) RecordOptions() records.Options {
	opts := records.DefaultOptions()
	opts.Lenient = c.Lenient()
	opts.Lowercase = c.Lowercase()
	opts.DedupeTriples = c.DedupeTriples()
	return opts
}

// BuildOptions returns the graph construction options selected by the configuration
func (c *Config) BuildOptions() network.BuildOptions {
	opts := network.DefaultBuildOptions()
	opts.MergeParallel = c.MergeParallel()
	opts.Lenient = c.Lenient()
	return opts
}

// LoadNetwork reads a reaction export and builds its network
func LoadNetwork(path string, cfg *Config, logger zerolog.Logger) (*network.ReactionNetwork, error) {
	result, err := records.LoadFile(path, cfg.RecordOptions())
	if err != nil {
		return nil, err
	}
	for _, s := range result.Skipped {
		logger.Warn().Int("row", s.Row).Str("reason", s.Reason).Msg("Skipped reaction row")
	}

	g, err := network.Build(result.Records, cfg.BuildOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build network from %s: %w", path, err)
	}

	logger.Info().
		Str("file", path).
		Int("records", len(result.Records)).
		Int("skipped", len(result.Skipped)).
		Int("molecules", g.NumNodes()).
		Int("reactions", g.NumEdges()).
		Msg("Loaded reaction network")
	return g, nil
}
