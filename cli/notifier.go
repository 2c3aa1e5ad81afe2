package cli

import (
	"log/slog"

	"github.com/homehelp/homehelp-api/controllers"
	"github.com/homehelp/homehelp-api/services"
	"github.com/spf13/cobra"
)

// notificationKeys are the routing keys the notifier queue is bound to
var notificationKeys = []string{"booking.#", "notification"}

func init() {
	rootCmd.AddCommand(notifierCmd)
}

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Run the notifier (HTTP /notify and, with RABBIT_URL, the queue consumer)",
	Args:  cobra.NoArgs,
	RunE:  runNotifier,
}

func runNotifier(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig("notifier")
	if err != nil {
		return err
	}

	sink := services.LogNotifier{Logger: logger}

	if cfg.RabbitURL != "" {
		consumer, err := services.NewConsumer(cfg.RabbitURL, cfg.NotifyExchange, cfg.NotifyQueue, notificationKeys)
		if err != nil {
			return err
		}
		defer func() {
			_ = consumer.Close()
		}()

		go func() {
			logger.Info("consuming notifications", slog.String("queue", cfg.NotifyQueue))
			if err := consumer.Consume(ctx, sink.Notify); err != nil {
				logger.Error("notification consumer stopped", slog.Any("error", err))
			}
		}()
	}

	return serve(ctx, logger, cfg.ListenAddr("4003"), controllers.NewNotifierRouter(sink, logger))
}
