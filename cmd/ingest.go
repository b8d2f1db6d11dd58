package main

import (
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pankajverma010101-svg/predict-cpi/internal/extract"
	"github.com/pankajverma010101-svg/predict-cpi/internal/ingest"
	"github.com/pankajverma010101-svg/predict-cpi/pkg/anthropic"
	"github.com/pankajverma010101-svg/predict-cpi/pkg/msgraph"
)

var (
	ingestSince string
	ingestUntil string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Sync bid emails from the mailbox into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		since, until, err := ingestWindow()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		graph := msgraph.NewClient(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret,
			msgraph.WithBaseURL(cfg.Graph.BaseURL),
			msgraph.WithLoginURL(cfg.Graph.LoginURL),
			msgraph.WithPageSize(cfg.Graph.PageSize))

		var client anthropic.Client
		if cfg.Anthropic.Key != "" {
			client = anthropic.NewClient(cfg.Anthropic.Key)
		}
		classifier := extract.NewTypeClassifier(client, cfg.Anthropic.Model)

		in := ingest.New(graph, cfg.Graph.Mailbox, st, extract.New(), classifier,
			cfg.Ingest.RatePerSecond, cfg.Ingest.Concurrency)

		stats, err := in.Run(ctx, since, until)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(stats), "encode stats")
	},
}

func ingestWindow() (time.Time, time.Time, error) {
	until := time.Now().UTC()
	since := until.AddDate(0, 0, -cfg.Ingest.LookbackDays)

	if ingestSince != "" {
		t, err := time.Parse("2006-01-02", ingestSince)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "parse --since %q", ingestSince)
		}
		since = t
	}
	if ingestUntil != "" {
		t, err := time.Parse("2006-01-02", ingestUntil)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "parse --until %q", ingestUntil)
		}
		until = t
	}
	if !since.Before(until) {
		return time.Time{}, time.Time{}, eris.New("--since must be before --until")
	}
	return since, until, nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSince, "since", "", "window start (YYYY-MM-DD, default lookback from config)")
	ingestCmd.Flags().StringVar(&ingestUntil, "until", "", "window end (YYYY-MM-DD, default now)")
	rootCmd.AddCommand(ingestCmd)
}
