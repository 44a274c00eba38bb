package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aymen-fkir/sku-review-generator/internal/pipeline"
)

func newCheckpointsCmd(a *app) *cobra.Command {
	var input, mode string
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List the saved checkpoints of an input sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()
			if store == nil {
				return fmt.Errorf("checkpoints are disabled in %s", a.configPath)
			}
			entries := store.List(input, mode)
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no checkpoints for %s (%s) in %s\n", input, mode, store.Dir())
				return nil
			}

			latest, _ := store.Latest(input, mode)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHECKPOINT\tSIZE\tSAVED\tFILE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Number, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime), e.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if latest != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "latest: %d reviews, %d per SKU, run %s\n",
					latest.TotalReviews, latest.ReviewsPerSKU, latest.RunID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input sheet the checkpoints belong to")
	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.ModeStandard, "run mode")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
