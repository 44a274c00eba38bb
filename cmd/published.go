package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "published",
		Short: "List result files published to the storage bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher, err := a.publisher()
			if err != nil {
				return err
			}
			objects, err := publisher.Published()
			if err != nil {
				return err
			}
			if len(objects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing published yet")
				return nil
			}
			for _, o := range objects {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
}
