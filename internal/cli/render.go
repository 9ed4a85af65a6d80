package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depviz/pkg/errors"
	graphio "github.com/matzehuels/depviz/pkg/io"
	"github.com/matzehuels/depviz/pkg/loadorder"
	"github.com/matzehuels/depviz/pkg/pipeline"
	"github.com/matzehuels/depviz/pkg/render/nodelink"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	output   string
	outDir   string
	formats  string
	detailed bool
}

// renderCommand creates the "render" command, which re-exports a graph saved
// with --format json without reading the repository again.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a saved dependency graph",
		Long: `Render reads a graph written by "depviz --format json", recomputes its load
order and writes the DOT file plus the requested images.`,
		Example: `  depviz render busybox.json --format svg
  depviz render graph.json -o graph-detailed --detailed`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{nodelink.FormatJSON}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out-dir") && c.Config.OutDir != "" {
				flags.outDir = c.Config.OutDir
			}
			if !cmd.Flags().Changed("format") && len(c.Config.Formats) > 0 {
				flags.formats = strings.Join(c.Config.Formats, ",")
			}
			if !cmd.Flags().Changed("detailed") {
				flags.detailed = c.Config.Detailed
			}
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file name (default: input name)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", ".", "directory for output files")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "extra output formats: png, svg, json (comma-separated; dot writes only the DOT file)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include depth in node labels")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runRender imports the graph at input, orders it from its root and exports it.
func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	prog := newProgress(c.Logger)

	g, err := graphio.ImportJSON(input)
	if err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return errs.New(errs.ErrCodeFormat, "graph %s has no nodes", input)
	}
	c.Logger.Debug("loaded graph", "path", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	order, err := loadorder.Resolve(g, g.Root())
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	formats := splitList(flags.formats)
	if len(formats) == 0 {
		formats = pipeline.DefaultFormats
	}

	exp, err := nodelink.Export(ctx, g, nodelink.ExportOptions{
		Dir:     flags.outDir,
		Name:    output,
		Formats: formats,
		DOT:     nodelink.Options{Detailed: flags.detailed, Unresolved: order.Unresolved},
	})
	if err != nil {
		return err
	}
	prog.done("Rendered " + g.Root())

	printOrder(order)
	printExport(exp)
	return nil
}
