package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/zenite-dash/internal/builder"
)

func newLayoutCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and edit the saved builder layout",
	}

	// load trae el layout guardado o los defaults
	load := func(ctx context.Context) (*builder.Model, error) {
		m := builder.New(root.client(), root.user)
		return m, m.Load(ctx)
	}
	save := func(cmd *cobra.Command, m *builder.Model) error {
		at, err := m.Save(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d widgets for %s at %s\n", len(m.Widgets()), m.UserID(), at.Format(time.RFC3339))
		return nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the widgets and their lg positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return printLayout(cmd.OutOrStdout(), m)
		},
	}

	add := &cobra.Command{
		Use:   "add <type>",
		Short: "Append a widget at the bottom of the grid and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := load(cmd.Context())
			if err != nil {
				return err
			}
			w, err := m.AddWidget(builder.WidgetType(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", w.ID, w.Title)
			return save(cmd, m)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a widget from every breakpoint and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := load(cmd.Context())
			if err != nil {
				return err
			}
			before := len(m.Widgets())
			m.RemoveWidget(args[0])
			if len(m.Widgets()) == before {
				return fmt.Errorf("widget %q not in layout", args[0])
			}
			return save(cmd, m)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved layout and go back to the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := builder.New(root.client(), root.user)
			if err := m.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "layout for %s reset\n", m.UserID())
			return nil
		},
	}

	var query string
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "List the widget types that can be added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tLABEL\tCATEGORY\tSIZE")
			for _, c := range builder.SearchCatalog(query) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\n", c.Type, c.Label, c.Category, c.DefaultW, c.DefaultH)
			}
			return w.Flush()
		},
	}
	catalog.Flags().StringVarP(&query, "query", "q", "", "Filter by label or category.")

	cmd.AddCommand(show, add, remove, reset, catalog)
	return cmd
}

func printLayout(out io.Writer, m *builder.Model) error {
	pos := map[string]builder.LayoutEntry{}
	for _, e := range m.Layouts().Get(builder.LG) {
		pos[e.I] = e
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tX\tY\tW\tH")
	for _, wd := range m.Widgets() {
		e, ok := pos[wd.ID]
		if !ok {
			fmt.Fprintf(w, "%s\t%s\t%s\t-\t-\t-\t-\n", wd.ID, wd.Type, wd.Title)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", wd.ID, wd.Type, wd.Title, e.X, e.Y, e.W, e.H)
	}
	return w.Flush()
}
