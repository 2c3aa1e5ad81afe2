package cli

import (
	"fmt"

	"github.com/homehelp/homehelp-api/config"
	"github.com/homehelp/homehelp-api/controllers"
	"github.com/homehelp/homehelp-api/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(identityCmd)
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Run the identity service (register, login, profiles)",
	Args:  cobra.NoArgs,
	RunE:  runIdentity,
}

func runIdentity(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig("identity")
	if err != nil {
		return err
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}

	tokens, err := newTokenService(cfg)
	if err != nil {
		return err
	}

	identities := services.NewIdentityService(db, tokens)
	if err := identities.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate identity tables: %w", err)
	}

	return serve(cmd.Context(), logger, cfg.ListenAddr("4001"), controllers.NewIdentityRouter(identities, db, logger))
}

func newTokenService(cfg *config.Config) (*services.TokenService, error) {
	return services.NewTokenService(services.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
}
