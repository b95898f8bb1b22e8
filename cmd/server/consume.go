package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/queue"
)

var auditPath string

var consumeCmd = &cobra.Command{
	Use:   "consume-events",
	Short: "Append catalog change events from RabbitMQ to an audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cur.cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = cur.log.WithContext(ctx)

		cur.log.Info().Str("queue", queue.EntryChangedQueue).Str("audit_log", auditPath).Msg("consuming change events")
		err := queue.StartAuditConsumer(ctx, cur.cfg.RabbitMQURL, auditPath)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	consumeCmd.Flags().StringVar(&auditPath, "audit-log", queue.DefaultAuditLog, "file the audit lines are appended to")
}
