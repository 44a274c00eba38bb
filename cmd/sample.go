package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aymen-fkir/sku-review-generator/internal/extract"
)

func newSampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample [path]",
		Short: "Write a sample input sheet (.csv, .tsv or .parquet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "sample_products.csv"
			if len(args) == 1 {
				path = args[0]
			}
			if err := extract.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sample written to %s\n", path)
			return nil
		},
	}
}
