package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gilchrisn/reaction-network-analysis/pkg/analysis"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
	"github.com/gilchrisn/reaction-network-analysis/pkg/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *analysis.Config
	cfgFile string
	logger  zerolog.Logger
}

var descriptions = map[analysis.Kind]string{
	analysis.KindFragmentation: "Connected components and their size distribution",
	analysis.KindImportant:     "Rank molecules by degree, betweenness and PageRank",
	analysis.KindDegree:        "Degree distribution with power-law fit",
	analysis.KindProperties:    "Shortest paths, clustering and small-world omega",
	analysis.KindClusters:      "k-cores with Girvan-Newman and Louvain communities",
	analysis.KindCorrelation:   "Degree correlation and average neighbour connectivity",
	analysis.KindDominance:     "Central point dominance",
	analysis.KindCompare:       "Compare the molecules of two datasets",
	analysis.KindMerge:         "Merge two datasets and analyse their fragmentation",
}

// flags per command, flag name -> config key
var commandFlags = map[analysis.Kind]map[string]string{
	analysis.KindFragmentation: {"mode": "analysis.fragmentation_mode"},
	analysis.KindImportant:     {"top-k": "analysis.top_k", "weighted": "analysis.weighted", "damping": "analysis.pagerank_damping"},
	analysis.KindDegree:        {"type": "analysis.degree_type", "k-min": "analysis.fit_k_min", "k-max": "analysis.fit_k_max"},
	analysis.KindProperties: {
		"weighted":      "analysis.weighted",
		"lcc":           "analysis.largest_component_only",
		"omega":         "omega.enabled",
		"seed":          "omega.seed",
		"random-graphs": "omega.random_graphs",
		"rewire":        "omega.rewire_iterations",
		"timeout":       "omega.timeout",
	},
	analysis.KindClusters: {
		"core-depth": "analysis.core_depth",
		"max-levels": "girvan_newman.max_levels",
		"quality":    "girvan_newman.quality",
		"lcc":        "girvan_newman.largest_component_only",
		"louvain":    "louvain.enabled",
		"seed":       "louvain.seed",
	},
	analysis.KindCorrelation: {"type": "analysis.degree_type"},
	analysis.KindMerge:       {"mode": "analysis.fragmentation_mode"},
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: analysis.NewConfig(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "rnet",
		Short:         "Analyse biorefinery reaction networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgFile != "" {
				if err := a.cfg.LoadFromFile(a.cfgFile); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}
			if err := bind(a.cfg, cmd.Root().PersistentFlags(), map[string]string{
				"input":     "input.file",
				"compare":   "input.compare_file",
				"lenient":   "input.lenient",
				"merge":     "input.merge_parallel",
				"output":    "output.dir",
				"log-level": "logging.level",
			}); err != nil {
				return err
			}
			if err := bind(a.cfg, cmd.Flags(), commandFlags[kindOf(cmd)]); err != nil {
				return err
			}
			a.logger = a.cfg.CreateLogger()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML, JSON or TOML)")
	pf.StringP("input", "i", "", "reaction export (TSV)")
	pf.String("compare", "", "second reaction export for compare and merge")
	pf.Bool("lenient", false, "skip invalid rows instead of failing")
	pf.Bool("merge", false, "collapse parallel reactions")
	pf.StringP("output", "o", "", "directory for JSON results (default stdout)")
	pf.String("log-level", "info", "log level")

	for _, kind := range []analysis.Kind{
		analysis.KindFragmentation,
		analysis.KindImportant,
		analysis.KindDegree,
		analysis.KindProperties,
		analysis.KindClusters,
		analysis.KindCorrelation,
		analysis.KindDominance,
		analysis.KindCompare,
		analysis.KindMerge,
	} {
		root.AddCommand(a.newCommand(kind))
	}
	return root
}

func (a *app) newCommand(kind analysis.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String() + " [input] [compare]",
		Short: descriptions[kind],
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, kind, args)
		},
	}

	f := cmd.Flags()
	switch kind {
	case analysis.KindFragmentation, analysis.KindMerge:
		f.String("mode", "weak", "component mode: weak or strong")
	case analysis.KindImportant:
		f.Int("top-k", 10, "molecules per ranking")
		f.Bool("weighted", true, "use step counts as path lengths")
		f.Float64("damping", 0.85, "PageRank damping factor")
	case analysis.KindDegree:
		f.String("type", "out", "degree type: in, out or total")
		f.Int("k-min", 1, "smallest degree in the fit")
		f.Int("k-max", 0, "largest degree in the fit (0 = no limit)")
	case analysis.KindProperties:
		f.Bool("weighted", true, "use step counts as path lengths")
		f.Bool("lcc", false, "restrict to the largest component")
		f.Bool("omega", false, "compute the small-world coefficient")
		f.Int64("seed", 42, "seed for random references")
		f.Int("random-graphs", 3, "random references for omega")
		f.Int("rewire", 3, "swap attempts per edge")
		f.Duration("timeout", 0, "time budget for omega")
	case analysis.KindClusters:
		f.Int("core-depth", 4, "number of innermost k-cores to list")
		f.Int("max-levels", 0, "Girvan-Newman splits (0 = all)")
		f.String("quality", "modularity", "partition quality: modularity or intra-inter")
		f.Bool("lcc", true, "run Girvan-Newman on the largest component")
		f.Bool("louvain", true, "also run Louvain and report its agreement")
		f.Int64("seed", 42, "seed for the Louvain visiting order")
	case analysis.KindCorrelation:
		f.String("type", "out", "degree type: in, out or total")
	}
	return cmd
}

func (a *app) run(cmd *cobra.Command, kind analysis.Kind, args []string) error {
	if len(args) > 0 {
		a.cfg.Set("input.file", args[0])
	}
	if len(args) > 1 {
		a.cfg.Set("input.compare_file", args[1])
	}
	if a.cfg.InputFile() == "" {
		return fmt.Errorf("no input file given")
	}

	g, err := analysis.LoadNetwork(a.cfg.InputFile(), a.cfg, a.logger)
	if err != nil {
		return err
	}

	var other *network.ReactionNetwork
	if kind == analysis.KindCompare || kind == analysis.KindMerge {
		if a.cfg.CompareFile() == "" {
			return fmt.Errorf("%s needs a second input file", kind)
		}
		if other, err = analysis.LoadNetwork(a.cfg.CompareFile(), a.cfg, a.logger); err != nil {
			return err
		}
	}

	command, err := a.cfg.Command(kind, other)
	if err != nil {
		return err
	}
	report, err := analysis.NewRunner(g, a.logger).Run(cmd.Context(), command)
	if err != nil {
		return err
	}

	if dir := a.cfg.OutputDir(); dir != "" {
		base := filepath.Base(a.cfg.InputFile())
		w := output.NewWriter(dir, strings.TrimSuffix(base, filepath.Ext(base)))
		path, err := w.Write(kind.String(), report)
		if err != nil {
			return err
		}
		a.logger.Info().Str("path", path).Msg("Results written")
		return nil
	}
	return output.Encode(cmd.OutOrStdout(), report)
}

// kindOf maps a subcommand back to its analysis kind
func kindOf(cmd *cobra.Command) analysis.Kind {
	kind, err := analysis.ParseKind(cmd.Name())
	if err != nil {
		return -1
	}
	return kind
}

func bind(cfg *analysis.Config, flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := cfg.Viper().BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
