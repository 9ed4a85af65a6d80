package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depviz/pkg/index"
	"github.com/matzehuels/depviz/pkg/loadorder"
	"github.com/matzehuels/depviz/pkg/pipeline"
	"github.com/matzehuels/depviz/pkg/render/nodelink"
	"github.com/matzehuels/depviz/pkg/source"
)

// analyzeFlags holds the root command's flags.
type analyzeFlags struct {
	pkg      string
	repo     string
	mode     string
	output   string
	depth    int
	outDir   string
	formats  string
	noCache  bool
	refresh  bool
	detailed bool
	idxFmt   string
}

// analyzeCommand creates the root command, which analyzes one package.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "depviz",
		Short: "depviz visualizes package dependency graphs",
		Long: `depviz reads an Alpine-style package index, builds the dependency graph of
one package up to a depth limit, prints a load order and writes the graph as
Graphviz DOT plus rendered images.

In remote mode --repo is a repository URL; APKINDEX.tar.gz is downloaded from
it. In test mode --repo is a local file of "NAME: DEP DEP ..." lines.`,
		Example: `  depviz --package busybox --repo https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64 \
    --mode remote --output busybox --depth 3
  depviz -p A -r testdata/repo.txt -m test -o graph -d 2 --format png,svg`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &flags)
			return c.runAnalyze(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pkg, "package", "p", "", "package to analyze")
	cmd.Flags().StringVarP(&flags.repo, "repo", "r", "", "repository URL (remote) or index file path (test)")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "repository mode: "+source.ModeRemote+" or "+source.ModeTest)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file name (extension optional)")
	cmd.Flags().IntVarP(&flags.depth, "depth", "d", 0, "maximum dependency depth (>= 1)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", ".", "directory for output files")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "extra output formats: png, svg, json (comma-separated; dot writes only the DOT file)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching of downloaded indexes")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "download the index even if cached")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include depth in node labels")
	cmd.Flags().StringVar(&flags.idxFmt, "index-format", "", "override the index format: structured (APKINDEX) or simple (default: from --mode)")

	for _, name := range []string{"package", "repo", "mode", "output", "depth"} {
		_ = cmd.MarkFlagRequired(name)
	}
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("index-format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(index.FormatStructured), string(index.FormatSimple)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// applyConfig fills flags the user did not set from the loaded config.
func (c *CLI) applyConfig(cmd *cobra.Command, flags *analyzeFlags) {
	cfg := c.Config
	changed := cmd.Flags().Changed
	if !changed("out-dir") && cfg.OutDir != "" {
		flags.outDir = cfg.OutDir
	}
	if !changed("format") && len(cfg.Formats) > 0 {
		flags.formats = strings.Join(cfg.Formats, ",")
	}
	if !changed("detailed") {
		flags.detailed = cfg.Detailed
	}
	if !changed("no-cache") {
		flags.noCache = cfg.NoCache
	}
}

// runAnalyze executes the pipeline and prints the report.
func (c *CLI) runAnalyze(ctx context.Context, flags analyzeFlags) error {
	opts := pipeline.Options{
		Package:  flags.pkg,
		Repo:     flags.repo,
		Mode:     flags.mode,
		Depth:    flags.depth,
		Output:   flags.output,
		OutDir:   flags.outDir,
		Formats:  splitList(flags.formats),
		Detailed: flags.detailed,
		Refresh:  flags.refresh,
		Logger:   c.Logger,

		IndexFormat: flags.idxFmt,
	}
	// Reject bad arguments before touching the cache or network.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	printParameters(opts)

	runner, store, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %s", res.Package))

	printReport(res)
	return nil
}

func printParameters(opts pipeline.Options) {
	fmt.Println(StyleTitle.Render("Parameters"))
	printKeyValue("package", opts.Package)
	printKeyValue("repo", opts.Repo)
	printKeyValue("mode", opts.Mode)
	printKeyValue("output", opts.Output)
	printKeyValue("depth", strconv.Itoa(opts.Depth))
	if opts.IndexFormat != "" {
		printKeyValue("index format", opts.IndexFormat)
	}
	printNewline()
}

func printReport(res *pipeline.Result) {
	if len(res.DirectDeps) == 0 {
		printInfo("Direct dependencies: %s", StyleDim.Render("none"))
	} else {
		printInfo("Direct dependencies: %s", StyleValue.Render(strings.Join(res.DirectDeps, ", ")))
	}
	printNewline()

	fmt.Println(StyleTitle.Render("Dependency graph"))
	g := res.Graph
	for _, id := range g.Keys() {
		deps, _ := g.Deps(id)
		printEdge(id, deps)
	}
	printStats(res.Stats)
	printNewline()

	printOrder(res.Order)
	printExport(res.Export)
}

func printOrder(order *loadorder.Result) {
	fmt.Println(StyleTitle.Render("Load order"))
	for i, id := range order.Order {
		printOrdered(i+1, id)
	}
	if order.CyclesDetected {
		printWarning("Cycle detected; %d packages could not be ordered: %s",
			len(order.Unresolved), strings.Join(order.Unresolved, ", "))
	}
	printNewline()
}

func printExport(exp *nodelink.ExportResult) {
	printSuccess("Wrote graph description")
	printFile(exp.DOTPath)
	for _, format := range sortedKeys(exp.Images) {
		printFile(exp.Images[format])
	}
	for _, s := range exp.Skipped {
		printWarning("%s not rendered: %v", strings.ToUpper(s.Format), s.Err)
	}
}

func completeModes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{source.ModeRemote, source.ModeTest}, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{nodelink.FormatPNG, nodelink.FormatSVG, nodelink.FormatJSON, nodelink.FormatDOT}, cobra.ShellCompDirectiveNoFileComp
}
