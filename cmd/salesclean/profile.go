// cmd/salesclean/profile.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/gidiolindo/Portfolio/pkg/model"
	"github.com/gidiolindo/Portfolio/pkg/profile"
	"github.com/gidiolindo/Portfolio/pkg/report"
)

func newProfileCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the exploratory profile of the raw source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			raw, err := a.loadRaw(cmd.Context())
			if err != nil {
				return err
			}
			report.NewConsole(a.out).WithColor(!opts.noColor).
				PrintProfile(profile.Build(raw, model.OrdersMetadata()))
			return nil
		},
	}
}
