package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
)

// storeCommand creates the chart store management command.
func (c *CLI) storeCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved family charts",
		Long: `Manage saved family charts.

Imported charts get a UUID and can be used anywhere an input is expected as
store:<id>. The backend (sqlite or mongo) comes from the config file and can
be overridden with --backend.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd, args); err != nil {
				return err
			}
			if backend != "" {
				c.Config.Store.Backend = backend
				c.Config.Store = c.Config.Store.WithDefaults()
			}
			return c.Config.Validate()
		},
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: sqlite, mongo (default from config)")

	cmd.AddCommand(c.storeImportCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeExportCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// storeImportCommand creates the "store import" subcommand.
func (c *CLI) storeImportCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <family.json|url>",
		Short: "Save a family snapshot to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				return c.runStoreImport(cmd.Context(), st, args[0], name)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "chart name (default: input file name)")
	return cmd
}

func (c *CLI) runStoreImport(ctx context.Context, st store.Store, input, name string) error {
	if pipeline.ClassifyInput(input) == pipeline.InputStore {
		return fmt.Errorf("%s is already stored", input)
	}
	src, err := pipeline.Source(input, nil)
	if err != nil {
		return err
	}
	data, err := family.Load(ctx, src)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	chart, err := st.Save(ctx, data, name)
	if err != nil {
		return fmt.Errorf("save chart: %w", err)
	}

	printSuccess("Imported %s", chart.Name)
	printKeyValue("ID", chart.ID)
	printKeyValue("People", fmt.Sprint(chart.People))
	printNewline()
	printNextStep("Render", appName+" render "+store.Ref(chart.ID))
	return nil
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				charts, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(charts) == 0 {
					printInfo("No saved charts")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), chartsTable(charts))
				return nil
			})
		},
	}
}

func chartsTable(charts []store.Chart) string {
	rows := make([][]string, len(charts))
	for i, ch := range charts {
		rows[i] = []string{ch.ID, ch.Name, fmt.Sprint(ch.People), ch.CreatedAt.Local().Format("2006-01-02 15:04")}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "People", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return listHeaderStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorTeal)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// storeExportCommand creates the "store export" subcommand.
func (c *CLI) storeExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved chart as family JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := chartID(args[0])
			return c.withStore(cmd.Context(), func(st store.Store) error {
				data, err := st.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return family.Encode(os.Stdout, data)
				}
				if err := family.WriteFile(output, data); err != nil {
					return err
				}
				printSuccess("Exported %s", id)
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved chart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := chartID(args[0])
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// chartID accepts both a bare id and a store:<id> reference.
func chartID(arg string) string {
	if id, ok := store.ParseRef(arg); ok {
		return id
	}
	return arg
}
