package cli

import (
	"fmt"
	"log/slog"

	"github.com/homehelp/homehelp-api/config"
	"github.com/homehelp/homehelp-api/controllers"
	"github.com/homehelp/homehelp-api/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(bookingCmd)
}

var bookingCmd = &cobra.Command{
	Use:   "booking",
	Short: "Run the booking service (catalog, helpers, listings, bookings)",
	Args:  cobra.NoArgs,
	RunE:  runBooking,
}

func runBooking(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig("booking")
	if err != nil {
		return err
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := newBookingNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Warn("failed to close notifier", slog.Any("error", err))
		}
	}()

	dispatcher := services.NewNotificationDispatcher(notifier, cfg.NotifyTimeout, logger)
	defer dispatcher.Wait()

	opts := []services.LedgerOption{
		services.WithLogger(logger),
		services.WithNotifications(dispatcher),
	}

	photos := cfg.AWSS3Bucket != ""
	if photos {
		store, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithImages(services.NewImageService(store)))
	} else {
		logger.Info("AWS_S3_BUCKET not set, helper photo uploads disabled")
	}

	ledger := services.NewLedger(db, opts...)
	if err := ledger.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate booking tables: %w", err)
	}
	if err := ledger.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	return serve(ctx, logger, cfg.ListenAddr("4002"), controllers.NewBookingRouter(ledger, db, logger, photos))
}

// newBookingNotifier picks the transport for booking notifications
func newBookingNotifier(cfg *config.Config, logger *slog.Logger) (services.Notifier, func() error, error) {
	noop := func() error { return nil }

	switch cfg.NotifierDriver {
	case "amqp":
		publisher, err := services.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("publishing notifications", slog.String("exchange", cfg.NotifyExchange))
		return services.NewAMQPNotifier(publisher), publisher.Close, nil
	case "log":
		return services.LogNotifier{Logger: logger}, noop, nil
	default:
		logger.Info("posting notifications", slog.String("url", cfg.NotificationURL))
		return services.NewHTTPNotifier(cfg.NotificationURL, cfg.NotifyTimeout), noop, nil
	}
}
