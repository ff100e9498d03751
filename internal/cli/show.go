package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/render"
)

// showOpts holds the command-line flags for the show command.
type showOpts struct {
	person    string // print one person and exit
	symmetric bool   // resolve spouses in both directions
	table     bool   // print the people table and exit
	refresh   bool
}

// showCommand creates the show command, an interactive family browser.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:   "show <family.json|url|store:id>",
		Short: "Browse a family in the terminal",
		Long: `Browse a family in the terminal.

Without flags, show opens an interactive browser: pick a person to see their
parents, spouse and children. --person prints one person's details and exits;
--table prints everyone as a table.

Spouse links are stored on one side of a couple only. By default the partner
without the link shows no spouse; --symmetric-spouse looks both ways.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.person, "person", "p", "", "print details for one person id and exit")
	cmd.Flags().BoolVar(&opts.symmetric, "symmetric-spouse", false, "find spouses from either side of a couple")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print all people as a table and exit")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-fetch remote input even if cached")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, input string, opts showOpts) error {
	runner, err := c.newRunner(ctx, input, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(input, layoutFlags{})
	popts.Refresh = opts.refresh

	spinner := newSpinnerWithContext(ctx, "Loading family...")
	spinner.Start()
	data, _, err := runner.Load(ctx, popts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()

	switch {
	case opts.person != "":
		return printPerson(os.Stdout, data, opts.person, opts.symmetric)
	case opts.table:
		fmt.Fprintln(os.Stdout, peopleTable(data))
		return nil
	}

	handler := render.SelectionFuncs{
		OnSelect: func(id string) { c.Logger.Debug("person selected", "id", id) },
		OnClear:  func() { c.Logger.Debug("selection cleared") },
	}
	model := NewPersonBrowserModel(data, opts.symmetric, handler)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// printPerson writes the detail panel of one person.
func printPerson(w io.Writer, data *family.FamilyData, id string, symmetric bool) error {
	p, ok := data.Person(id)
	if !ok {
		return errors.New(errors.ErrCodePersonNotFound, "person %q not found", id)
	}
	rel := resolveRelations(p, data.People, symmetric)
	_, err := fmt.Fprintln(w, detailPanel(p, rel))
	return err
}

// peopleTable renders every person, grouped by generation.
func peopleTable(data *family.FamilyData) string {
	people := slices.Clone(data.People)
	slices.SortStableFunc(people, func(a, b family.Person) int { return a.Generation - b.Generation })

	rows := make([][]string, 0, len(people))
	for _, p := range people {
		spouse := ""
		if s := family.SpouseOf(p, data.People); s != nil {
			spouse = render.DisplayName(*s)
		}
		rows = append(rows, []string{
			p.ID,
			render.DisplayName(p),
			render.GenerationLabel(p.Generation),
			render.Lifespan(p),
			spouse,
			p.Occupation,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Gen", "Life", "Spouse", "Occupation").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return listHeaderStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorRose)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
