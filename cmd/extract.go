package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pankajverma010101-svg/predict-cpi/internal/extract"
	"github.com/pankajverma010101-svg/predict-cpi/pkg/anthropic"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract bid fields from an email body",
	Long:  "Reads a raw HTML or plain-text email body from a file (or stdin with no argument) and prints the extracted bid records as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return eris.Wrap(err, "read input")
		}

		extractor := extract.New()
		result := extractor.Extract(string(raw))

		var client anthropic.Client
		if cfg.Anthropic.Key != "" {
			client = anthropic.NewClient(cfg.Anthropic.Key)
		}
		classifier := extract.NewTypeClassifier(client, cfg.Anthropic.Model)
		businessType := classifier.Classify(cmd.Context(), result.Text)

		out := struct {
			extract.Result
			BusinessType string `json:"business_type"`
		}{Result: result, BusinessType: string(businessType)}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(out), "encode result")
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
