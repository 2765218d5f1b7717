package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		selected []string
		out      string
		zoom     float64
		format   string
	)

	cmd := &cobra.Command{
		Use:   "render DATASET",
		Short: "Render the graph to a PNG or to terminal text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = "png"
				if out == "" {
					format = "text"
				}
			}
			if format != "png" && format != "text" {
				return fmt.Errorf("unknown format %q", format)
			}
			if format == "png" && out == "" {
				return errors.New("png output needs --out")
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
			if zoom > 0 && zoom != 1 {
				w, h := c.CanvasSize()
				c.ZoomAt(zoom, geometry.Point{X: w / 2, Y: h / 2})
			}

			renderer := render.NewRenderer(a.cfg.RenderOptions(), a.metrics, a.logger)
			scene := render.SceneFrom(c.Snapshot())

			if format == "text" {
				w, h := c.CanvasSize()
				surface := render.NewTerminalSurface(int(w)/render.CellWidth, int(h)/render.CellHeight)
				renderer.Render(surface, scene)
				text := surface.Plain()
				if out == "" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
					return err
				}
				return writeOutput(out, []byte(text))
			}

			surface, err := render.NewRasterSurface(a.cfg.Canvas.Width, a.cfg.Canvas.Height, a.cfg.Render.Supersample)
			if err != nil {
				return err
			}
			defer surface.Close()
			renderer.Render(surface, scene)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := surface.EncodePNG(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			a.logger.Info("image written", logging.Path(out), logging.NodeCount(scene.Subgraph.Len()))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selected, "select", nil, "entity ids or aliases to select")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom about the canvas centre")
	cmd.Flags().StringVar(&format, "format", "", "png or text (default: png with --out, text otherwise)")
	return cmd
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
