package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/observability"
	"github.com/callscape/callscape/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	metric    string // metric column driving node fills
	name      string // display-name column
	rank      int    // rank slice for multi-rank profiles
	precision int    // decimal places in node labels
	format    string // "dot" or "svg"
	output    string // output file path, empty means stdout
}

// newDotCmd creates the dot command for exporting a profile as a
// Graphviz node-link diagram.
func newDotCmd() *cobra.Command {
	opts := dotOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "dot [profile.json]",
		Short: "Export a profile as a Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runDot(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.metric, "metric", "m", "time", "metric column driving node fills")
	cmd.Flags().StringVar(&opts.name, "name-column", "", "column holding display names")
	cmd.Flags().IntVar(&opts.rank, "rank", 0, "rank to display for multi-rank profiles")
	cmd.Flags().IntVarP(&opts.precision, "precision", "p", 0, "decimal places in node labels")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to a file instead of stdout")

	return cmd
}

func runDot(ctx context.Context, path string, opts *dotOpts) error {
	p, _, err := loadProfile(ctx, path)
	if err != nil {
		return err
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, opts.format, len(p.Graph.Nodes()))

	dot, err := nodelink.ToDOT(p.Graph, p.Table, nodelink.Options{
		MetricColumn: opts.metric,
		NameColumn:   opts.name,
		Rank:         opts.rank,
		Precision:    opts.precision,
	})
	if err != nil {
		observability.Render().OnRenderComplete(ctx, opts.format, 0, time.Since(start), err)
		return err
	}

	out := []byte(dot)
	if opts.format == formatSVG {
		// Graphviz layout can take a while on wide profiles.
		spinner := newSpinner(ctx, "Laying out graph")
		spinner.Start()
		out, err = nodelink.RenderSVG(ctx, dot)
		spinner.Stop()
		if err != nil {
			observability.Render().OnRenderComplete(ctx, opts.format, 0, time.Since(start), err)
			return err
		}
	}
	observability.Render().OnRenderComplete(ctx, opts.format, len(out), time.Since(start), nil)

	if opts.output == "" {
		fmt.Print(string(out))
		return nil
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return err
	}
	printSuccess("Exported %s", opts.format)
	printFile(opts.output)
	return nil
}
