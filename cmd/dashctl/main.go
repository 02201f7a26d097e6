package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/zenite-dash/internal/dashclient"
)

type rootFlags struct {
	url     string
	token   string
	user    string
	timeout time.Duration
}

func (f *rootFlags) client() *dashclient.Client {
	return dashclient.New(f.url, f.token, dashclient.NewHTTPClient(f.timeout))
}

func newRootCommand() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "dashctl",
		Short:        "Query the CRM dashboard API and edit builder layouts",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&f.url, "url", envOr("DASH_URL", "http://localhost:8080"), "Dashboard API base URL.")
	cmd.PersistentFlags().StringVar(&f.token, "token", os.Getenv("DASH_TOKEN"), "Bearer token.")
	cmd.PersistentFlags().StringVar(&f.user, "user", "", "Layout owner; empty uses the default user.")
	cmd.PersistentFlags().DurationVar(&f.timeout, "timeout", 15*time.Second, "HTTP timeout.")

	cmd.AddCommand(newDataCommand(f), newLayoutCommand(f))
	return cmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
