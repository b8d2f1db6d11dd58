package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pankajverma010101-svg/predict-cpi/internal/pricing"
)

var priceReq pricing.Request

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Resolve a CPI quote for one bid",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}

		resp, err := engine.Resolve(priceReq)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(resp), "encode response")
	},
}

func init() {
	priceCmd.Flags().StringVar(&priceReq.BusinessType, "business-type", "b2b", "b2b or b2c")
	priceCmd.Flags().StringVar(&priceReq.Market, "market", "", "market or country text")
	priceCmd.Flags().StringVar(&priceReq.IR, "ir", "", "incidence rate text (e.g. \"20%\" or \"5-9\")")
	priceCmd.Flags().StringVar(&priceReq.LOI, "loi", "", "interview length text (e.g. \"15 min\")")
	priceCmd.Flags().StringVar(&priceReq.ClientName, "client", "", "client name for client-specific pricing")
	priceCmd.Flags().BoolVar(&priceReq.Director, "dir", false, "director/VP audience")
	priceCmd.Flags().BoolVar(&priceReq.CLevel, "clevel", false, "C-level audience")
	priceCmd.MarkFlagRequired("market") //nolint:errcheck
	priceCmd.MarkFlagRequired("ir")     //nolint:errcheck
	priceCmd.MarkFlagRequired("loi")    //nolint:errcheck
	rootCmd.AddCommand(priceCmd)
}
