package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var reconcileTeamsCmd = &cobra.Command{
	Use:   "reconcile-teams",
	Short: "Repair User.Team drift against each team's member list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := wire(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		scanned, repaired, err := d.teams.ReconcileMembership(ctx)
		if err != nil {
			return err
		}
		d.logger.Info("team membership reconciliation complete", "scanned", scanned, "repaired", repaired)
		return nil
	},
}
