package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llmail-inject/ctf-control-plane/pkg/api"
	"github.com/llmail-inject/ctf-control-plane/pkg/queue"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background queue consumers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := wire(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		resultsReconciler := services.NewResultsReconciler(d.jobStore, d.teamStore, d.scenarioStore, d.logger)
		deadletterFinalizer := services.NewDeadletterFinalizer(d.jobStore, d.logger)

		resultsConsumer := queue.NewConsumer(d.queue, "results", d.cfg.QueueVisibilityTimeout, d.cfg.MaxDequeueCount, resultsReconciler.Step, d.logger)
		deadletterConsumer := queue.NewConsumer(d.queue, queue.DeadLetterQueueName, d.cfg.QueueVisibilityTimeout, d.cfg.MaxDequeueCount, deadletterFinalizer.Step, d.logger)

		resultsConsumer.Start(ctx)
		deadletterConsumer.Start(ctx)
		d.leaderboard.Start(ctx)

		server := api.NewServer(&d.cfg, d.db, d.authn, d.teams, d.users, d.scenarios, d.jobs, d.leaderboard, d.logger)

		err = server.Start(ctx)

		deadletterConsumer.Stop()
		resultsConsumer.Stop()
		d.leaderboard.Stop()

		return err
	},
}
