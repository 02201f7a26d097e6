package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/zenite-dash/internal/builder"
	"github.com/AngelCh415/zenite-dash/internal/dashclient"
	"github.com/AngelCh415/zenite-dash/internal/filter"
)

type dataFlags struct {
	period   string
	owners   []string
	stages   []string
	sources  []string
	segments []string
	cross    string
	// reconnect is how many manual retries follow a failed fetch.
	reconnect int
}

// state builds the filter state the flags describe.
func (f dataFlags) state(now time.Time) (filter.State, error) {
	st := filter.New(now)
	if f.period != "" {
		p, err := filter.ParsePeriod(f.period)
		if err != nil {
			return st, err
		}
		st = st.SetPeriod(p, now)
	}
	for _, o := range f.owners {
		st = st.ToggleOwner(o)
	}
	for _, s := range f.stages {
		st = st.ToggleStage(s)
	}
	for _, s := range f.sources {
		st = st.ToggleSource(s)
	}
	for _, s := range f.segments {
		st = st.ToggleSegment(s)
	}
	if f.cross != "" {
		dim, val, ok := strings.Cut(f.cross, "=")
		if !ok || dim == "" {
			return st, fmt.Errorf("--cross must be dimension=value, got %q", f.cross)
		}
		st = st.SetCrossFilter(dim, val)
	}
	return st, nil
}

func newDataCommand(root *rootFlags) *cobra.Command {
	var f dataFlags
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch the dashboard, filter it locally and print counts and KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.state(time.Now())
			if err != nil {
				return err
			}
			sess := dashclient.NewSession(root.client())
			err = sess.Refresh(cmd.Context())
			for i := 0; err != nil && i < f.reconnect; i++ {
				fmt.Fprintf(cmd.ErrOrStderr(), "fetch failed: %s; reconnecting (%d/%d)\n", sess.Err(), i+1, f.reconnect)
				err = sess.Reconnect(cmd.Context())
			}
			if err != nil {
				return err
			}
			d := sess.Data()
			out := filter.Apply(st, *d)
			k := builder.KPIs(out.Leads, out.Opportunities)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "period\t%s\n", st.Period)
			fmt.Fprintf(w, "active filters\t%d\n", st.ActiveFilterCount())
			fmt.Fprintf(w, "leads\t%d/%d\n", len(out.Leads), len(d.Leads))
			fmt.Fprintf(w, "opportunities\t%d/%d\n", len(out.Opportunities), len(d.Opportunities))
			fmt.Fprintf(w, "activities\t%d/%d\n", len(out.Activities), len(d.Activities))
			fmt.Fprintf(w, "accounts\t%d/%d\n", len(out.Accounts), len(d.Accounts))
			fmt.Fprintf(w, "contacts\t%d/%d\n", len(out.Contacts), len(d.Contacts))
			fmt.Fprintf(w, "pipeline\t%.2f\n", k.TotalPipeline)
			fmt.Fprintf(w, "won\t%.2f\n", k.WonValue)
			fmt.Fprintf(w, "active leads\t%d\n", k.ActiveLeads)
			fmt.Fprintf(w, "win rate\t%d%%\n", k.WinRate)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&f.period, "period", "", "Period: 7d, 30d, 90d, 6m, 1y, ytd or all.")
	cmd.Flags().StringSliceVar(&f.owners, "owner", nil, "Owner filter, repeatable.")
	cmd.Flags().StringSliceVar(&f.stages, "stage", nil, "Stage filter, repeatable.")
	cmd.Flags().StringSliceVar(&f.sources, "source", nil, "Source filter, repeatable.")
	cmd.Flags().StringSliceVar(&f.segments, "segment", nil, "Segment filter, repeatable.")
	cmd.Flags().StringVar(&f.cross, "cross", "", "Cross-filter as dimension=value.")
	cmd.Flags().IntVar(&f.reconnect, "reconnect", 0, "Retry a failed fetch this many times.")
	return cmd
}
