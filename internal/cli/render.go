package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format), "-" for stdout, or base path
	formats  []string // svg, png, dot, json
	title    string   // chart heading
	detailed bool     // occupation, location and dates in DOT/PNG labels
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for generating charts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		lf         layoutFlags
	)
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <family.json|url|store:id>",
		Short: "Render a family chart to SVG, PNG, DOT or JSON",
		Long: `Render a family chart.

Formats:
  svg   generation-layered chart with person cards (default)
  json  layout positions plus person records
  dot   Graphviz source of the family graph
  png   Graphviz raster of the family graph

Several formats can be requested at once (-f svg,png); files are then named
<base>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			popts := c.pipelineOptions(args[0], lf)
			popts.Formats = opts.formats
			popts.Title = opts.title
			popts.Detailed = opts.detailed
			popts.Refresh = opts.refresh
			return c.runRender(cmd.Context(), popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show occupation, location and dates (dot, png)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-fetch remote input even if cached")
	lf.register(cmd)

	return cmd
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if f := pipeline.ParseFormats(s); len(f) > 0 {
		return f
	}
	return []string{pipeline.FormatSVG}
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return derivedPath(input, "")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its destination. A single format honours
// -o verbatim.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// runRender runs the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, popts pipeline.Options, opts *renderOpts) error {
	runner, err := c.newRunner(ctx, popts.Input, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.formats, ", ")+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	c.Logger.Debug("pipeline finished",
		"load", result.Stats.LoadTime,
		"layout", result.Stats.LayoutTime,
		"render", result.Stats.RenderTime)

	paths := outputPaths(opts.output, popts.Input, opts.formats)
	toStdout := opts.output == "-" && len(opts.formats) == 1

	for _, format := range opts.formats {
		path := paths[format]
		if toStdout {
			path = ""
		}
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
	}
	if toStdout {
		return nil
	}

	printSuccess("Rendered %s", popts.Input)
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	cached := result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printStats(result.Stats.PersonCount, len(result.Family.Generations()), result.Stats.EdgeCount, cached)
	if slices.Contains(opts.formats, pipeline.FormatSVG) {
		printNewline()
		printNextStep("Browse", appName+" show "+popts.Input)
	}
	return nil
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
