package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netgraph/pkg/dataset"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

func newLayoutCmd(a *app) *cobra.Command {
	var (
		selected []string
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "layout DATASET",
		Short: "Compute node positions and export them as JSON",
		Long: `Lays out the visible subgraph and writes nodes, edges, positions and
run statistics as JSON. With --select only the selected entities and their
direct neighbours are laid out, and the last selected entity is centred.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compress && out == "" {
				return errors.New("--compress needs --out")
			}

			ds, g, err := a.loadGraph(args[0])
			if err != nil {
				return err
			}
			ids, err := resolveSelection(ds, g, selected)
			if err != nil {
				return err
			}
			c, err := a.newController(cmd.Context(), g, ids)
			if err != nil {
				return err
			}

			snap := c.Snapshot()
			data := visualization.NewVisualization(snap.Subgraph, snap.Positions).Data()
			stats := c.LastStats()
			data.Stats = &stats

			body, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("encode layout: %w", err)
			}

			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return err
			}
			if compress && !strings.HasSuffix(out, dataset.CompressedSuffix) {
				out += dataset.CompressedSuffix
			}
			if err := dataset.WriteFile(out, body); err != nil {
				return err
			}
			a.logger.Info("layout written",
				logging.Path(out),
				logging.NodeCount(len(data.Nodes)),
				logging.Iterations(stats.Iterations),
			)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selected, "select", nil, "entity ids or aliases to select")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&compress, "compress", false, "snappy-compress the output (adds .sz)")
	return cmd
}
