package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netgraph/pkg/config"
	"github.com/dd0wney/cluso-netgraph/pkg/dataset"
	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries what every subcommand shares once flags are parsed.
type app struct {
	cfgFile  string
	logLevel string
	width    int
	height   int
	seed     int64
	layout   string

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "netgraph",
		Short: "Lay out, render and explore relationship networks",
		Long: `netgraph reduces a roster of entities and a noisy relation list to a
canonical weighted graph, lays it out with a force simulation and renders
it as a PNG, as terminal text, or as an interactive terminal view.`,
		Version:           Version,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.IntVar(&a.width, "width", 0, "canvas width in pixels")
	pf.IntVar(&a.height, "height", 0, "canvas height in pixels")
	pf.Int64Var(&a.seed, "seed", 0, "layout seed; 0 picks a time-based seed")
	pf.StringVar(&a.layout, "layout", "", "layout algorithm (force|circular)")

	_ = root.RegisterFlagCompletionFunc("layout", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.AlgorithmForce, config.AlgorithmCircular}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newLayoutCmd(a),
		newRenderCmd(a),
		newViewCmd(a),
		newInspectCmd(a),
	)
	return root
}

// setup loads the config file, applies flag overrides and builds the
// logger and metrics registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("width") {
		cfg.Canvas.Width = a.width
	}
	if flags.Changed("height") {
		cfg.Canvas.Height = a.height
	}
	if flags.Changed("seed") {
		cfg.Layout.Seed = a.seed
	}
	if flags.Changed("layout") {
		cfg.Layout.Algorithm = a.layout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel())
	a.metrics = metrics.NewRegistry()
	return nil
}

// loadGraph reads a dataset and canonicalises it.
func (a *app) loadGraph(path string) (*dataset.Dataset, *graph.Graph, error) {
	timer := logging.StartTimer(a.logger, "dataset loaded", logging.Path(path))
	ds, err := dataset.Load(path)
	if err != nil {
		timer.EndError(err)
		return nil, nil, err
	}
	g := ds.Build()

	var oneSided, mutual int
	for _, e := range g.Edges {
		if e.Mutual() {
			mutual++
		} else {
			oneSided++
		}
	}
	a.metrics.RecordGraph(len(g.Nodes), oneSided, mutual, g.Report.DroppedSelfLoops, g.Report.DroppedEmpty)
	timer.End(
		logging.NodeCount(len(g.Nodes)),
		logging.EdgeCount(len(g.Edges)),
		logging.String("mode", g.Report.Mode.String()),
	)
	return ds, g, nil
}

// resolveSelection maps --select tokens to entity ids through the dataset's
// alias table.
func resolveSelection(ds *dataset.Dataset, g *graph.Graph, tokens []string) ([]string, error) {
	resolver := ds.Resolver()
	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		id, ok := resolver.Resolve(tok)
		if !ok {
			id = tok
		}
		if _, known := g.Node(id); !known {
			return nil, fmt.Errorf("unknown entity %q", tok)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newController builds a controller on the configured canvas and applies
// the initial selection.
func (a *app) newController(ctx context.Context, g *graph.Graph, selected []string) (*viewport.Controller, error) {
	c, err := viewport.NewController(ctx, g, a.cfg.NewLayout(), a.cfg.ViewportOptions(),
		viewport.WithLogger(a.logger),
		viewport.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("initial layout: %w", err)
	}
	for _, id := range selected {
		if !c.State().IsSelected(id) {
			c.ToggleSelection(id)
		}
	}
	return c, nil
}
