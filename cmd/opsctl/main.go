// Command opsctl runs operator tasks against the sweets-ops store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/app"
	"github.com/mubark555/pastry-opus-biz/internal/pricing"
	"github.com/mubark555/pastry-opus-biz/internal/repository/demo"
	"github.com/mubark555/pastry-opus-biz/pkg/config"
	"github.com/mubark555/pastry-opus-biz/pkg/database"
	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "opsctl [command]",
	Short:         "operator tasks for the sweets distribution service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.InitLogger(&logger.LogConfig{Level: "warn", ServiceName: "opsctl"})
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load("opsctl")
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return cfg, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the Postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := database.InitDB(&cfg.DB)
		if err != nil {
			return err
		}
		if err := database.Migrate(conn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "load the demo dataset into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// OpenStore seeds memory stores itself
		cfg.Store.SeedDemo = false
		store, err := app.OpenStore(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		if cfg.Store.Driver != config.StoreDriverMemory {
			if err := demo.Load(cmd.Context(), store); err != nil {
				return errors.Wrap(err, "load demo data")
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d products, %d clients, %d orders\n",
			len(demo.Products()), len(demo.Clients()), len(demo.Orders()))
		return nil
	},
}

var tokenFlags struct {
	userID   string
	email    string
	role     string
	clientID string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "issue a signed API token for a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role := access.Role(tokenFlags.role)
		if !role.Valid() {
			return errors.Newf("unknown role %q", tokenFlags.role)
		}
		if role == access.RoleClient && tokenFlags.clientID == "" {
			return errors.New("--client is required for the client role")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
			SigningKey:      cfg.JWT.SigningKey,
			ExpirationHours: cfg.JWT.ExpirationHours,
		})
		token, err := jwtUtil.GenerateToken(tokenFlags.userID, tokenFlags.email, string(role), tokenFlags.clientID)
		if err != nil {
			return errors.Wrap(err, "sign token")
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var quoteFlags struct {
	clientID  string
	productID string
	quantity  int
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "resolve the unit price a client pays for a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quoteFlags.quantity < 1 {
			return errors.New("--qty must be at least 1")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		q, err := pricing.NewResolver(store, nil).Quote(cmd.Context(), quoteFlags.clientID, quoteFlags.productID, quoteFlags.quantity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s x%d for %s: unit %s, total %s (%s)\n",
			q.ProductID, q.Quantity, q.ClientID, q.UnitPrice.StringFixed(2), q.LineTotal.StringFixed(2), q.Source)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.userID, "user", "operator", "user id carried by the token")
	tokenCmd.Flags().StringVar(&tokenFlags.email, "email", "", "email carried by the token")
	tokenCmd.Flags().StringVar(&tokenFlags.role, "role", string(access.RoleSuperAdmin), "role of the token holder")
	tokenCmd.Flags().StringVar(&tokenFlags.clientID, "client", "", "client id, required for the client role")

	quoteCmd.Flags().StringVar(&quoteFlags.clientID, "client", "", "client id")
	quoteCmd.Flags().StringVar(&quoteFlags.productID, "product", "", "product id")
	quoteCmd.Flags().IntVar(&quoteFlags.quantity, "qty", 1, "quantity")
	_ = quoteCmd.MarkFlagRequired("client")
	_ = quoteCmd.MarkFlagRequired("product")

	rootCmd.AddCommand(migrateCmd, seedCmd, tokenCmd, quoteCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "opsctl:", err)
		os.Exit(1)
	}
}
