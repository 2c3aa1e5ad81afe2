package cli

import (
	"github.com/homehelp/homehelp-api/gateway"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gatewayCmd)
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the edge gateway (authentication and routing)",
	Args:  cobra.NoArgs,
	RunE:  runGateway,
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig("gateway")
	if err != nil {
		return err
	}

	tokens, err := newTokenService(cfg)
	if err != nil {
		return err
	}

	routes, err := gateway.DefaultRoutes(cfg.IdentityServiceURL, cfg.BookingServiceURL)
	if err != nil {
		return err
	}

	gw, err := gateway.New(gateway.Options{
		Routes:         routes,
		Trust:          middleware.NewTrustPropagator(tokens, middleware.DefaultAccessRules(), logger),
		Timeout:        cfg.UpstreamTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	return serve(cmd.Context(), logger, cfg.ListenAddr("8080"), gw.Router())
}
