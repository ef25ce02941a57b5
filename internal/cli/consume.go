package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/outy-app/outy/internal/queue"
)

func (c *CLI) newConsumeCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append reservation events from RabbitMQ to a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := os.Getenv("RABBITMQ_URL")
			if url == "" {
				return errors.New("RABBITMQ_URL is not set")
			}
			consumer := queue.NewConsumer(url)
			if logPath != "" {
				consumer.LogPath = logPath
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return consumer.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "", "output file (default: logs/reservations.log)")
	return cmd
}
