package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate or refresh the scenario catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := wire(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		if err := d.scenarios.Setup(ctx); err != nil {
			return err
		}
		d.logger.Info("scenario catalog setup complete")
		return nil
	},
}
