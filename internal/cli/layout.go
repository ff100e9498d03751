package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render/jsonout"
	"github.com/matzehuels/kintree/pkg/store"
)

// layoutCommand creates the layout command for computing chart positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		people  bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout <family.json|url|store:id>",
		Short: "Compute card positions for a family snapshot",
		Long: `Compute card positions for a family snapshot.

The input is a family JSON file, an http(s) URL serving one, or a stored chart
(store:<id>). The output is a layout JSON file with one node per person and
one edge per parent-child connection.

Spacing defaults come from the config file and can be overridden per run.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(args[0], lf)
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, output, noCache, people)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch remote input even if cached")
	cmd.Flags().BoolVar(&people, "people", false, "embed the person records in the output")
	lf.register(cmd)

	return cmd
}

// runLayout loads the snapshot, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache, people bool) error {
	runner, err := c.newRunner(ctx, opts.Input, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading family...")
	spinner.Start()

	prog := newProgress(c.Logger)
	data, _, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.SetMessage("Computing layout...")

	res, cacheHit, err := runner.ComputeLayout(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d people", len(res.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	ropts := []jsonout.Option{jsonout.WithRoot(data.RootPersonID)}
	if people {
		ropts = append(ropts, jsonout.WithPeople(data.People))
	}
	out, err := jsonout.Render(res, ropts...)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivedPath(opts.Input, ".layout.json")
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(data.People), len(data.Generations()), len(res.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Input)

	return nil
}

// derivedPath builds an output path next to a file input, or in the working
// directory for URLs and store references.
func derivedPath(input, suffix string) string {
	var base string
	switch pipeline.ClassifyInput(input) {
	case pipeline.InputStore:
		id, _ := store.ParseRef(input)
		base = "chart-" + id
	case pipeline.InputURL:
		base = "family"
		if u, err := url.Parse(input); err == nil {
			if name := path.Base(u.Path); name != "." && name != "/" {
				base = strings.TrimSuffix(name, path.Ext(name))
			}
		}
	default:
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return base + suffix
}
