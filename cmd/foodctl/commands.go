package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/database"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type globalOptions struct {
	dbPath string
}

// open loads configuration and returns a migrated database
func (o *globalOptions) open() (*config.Config, *gorm.DB, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if o.dbPath != "" {
		conf.DBDriver = "sqlite"
		conf.DBPath = o.dbPath
	}
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return conf, db, nil
}

func seedCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog items and accounts from a YAML seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, err := opts.open()
			if err != nil {
				return err
			}
			if file == "" {
				file = conf.CatalogSeedFile
			}
			seed, err := database.LoadSeedFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			users, err := database.SeedUsers(ctx, db, seed.Users)
			if err != nil {
				return err
			}
			items, err := database.SeedCatalog(ctx, repository.NewGormCatalogRepository(db), seed.Items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d items from %s\n", users, items, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Seed file, defaults to CATALOG_SEED_FILE")
	return cmd
}

func createClientCmd(opts *globalOptions) *cobra.Command {
	var (
		userID      string
		name        string
		grants      string
		scopes      string
		redirectURI string
	)

	cmd := &cobra.Command{
		Use:   "create-client",
		Short: "Register an OAuth2 client for an existing account and print its secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			users := services.NewUserService(db, nil)
			owner, err := users.GetUserByID(ctx, userID)
			if err != nil {
				return err
			}

			secret := uuid.NewString()
			hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash secret: %w", err)
			}
			client := &models.OAuthClient{
				ID:          uuid.NewString(),
				Secret:      string(hash),
				Name:        name,
				UserID:      owner.ID,
				Scopes:      scopes,
				GrantTypes:  strings.Join(strings.Fields(strings.ReplaceAll(grants, ",", " ")), " "),
				RedirectURI: redirectURI,
			}
			if client.AllowsGrant("authorization_code") && client.RedirectURI == "" {
				return fmt.Errorf("%w: authorization_code clients need --redirect-uri", models.ErrValidation)
			}
			if err := services.NewClientService(db).CreateClient(ctx, client); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client ID: %s\n", client.ID)
			fmt.Fprintf(out, "Client Secret: %s\n", secret)
			fmt.Fprintf(out, "Owner: %s (%s)\n", owner.ID, owner.Role())
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "admin", "Account that owns the client")
	cmd.Flags().StringVar(&name, "name", "dev-client", "Client display name")
	cmd.Flags().StringVar(&grants, "grants", "client_credentials", "Comma separated grant types")
	cmd.Flags().StringVar(&scopes, "scopes", "read write", "Space separated scopes")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Redirect URI for authorization_code clients")
	return cmd
}

func priceCmd(opts *globalOptions) *cobra.Command {
	var (
		size     string
		sauce    string
		toppings []string
		extras   []string
		removed  []string
		cooking  string
		quantity int
	)

	cmd := &cobra.Command{
		Use:   "price <item-id>",
		Short: "Price a configuration of a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, err := opts.open()
			if err != nil {
				return err
			}

			modifiers := make(map[string]models.ModifierChoice)
			for _, ingredient := range extras {
				modifiers[ingredient] = models.ModifierExtra
			}
			for _, ingredient := range removed {
				modifiers[ingredient] = models.ModifierRemove
			}

			catalog := services.NewCatalogService(repository.NewGormCatalogRepository(db), pricing.NewEngine(conf.ExtraModifierSurcharge))
			quote, err := catalog.PriceConfiguration(cmd.Context(), args[0], models.ItemConfiguration{
				FoodID:            args[0],
				SelectedSize:      size,
				SelectedSauce:     sauce,
				SelectedToppings:  toppings,
				Modifiers:         modifiers,
				CookingPreference: models.CookingPreference(cooking),
				Quantity:          quantity,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(quote)
		},
	}
	cmd.Flags().StringVar(&size, "size", "", "Size option, defaults to the first one")
	cmd.Flags().StringVar(&sauce, "sauce", "", "Sauce option")
	cmd.Flags().StringSliceVar(&toppings, "topping", nil, "Topping to add, repeatable")
	cmd.Flags().StringSliceVar(&extras, "extra", nil, "Ingredient to double, repeatable")
	cmd.Flags().StringSliceVar(&removed, "remove", nil, "Ingredient to leave out, repeatable")
	cmd.Flags().StringVar(&cooking, "cooking", "", "Cooking preference")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity")
	return cmd
}

func tokenCmd(opts *globalOptions) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, err := opts.open()
			if err != nil {
				return err
			}
			user, err := services.NewUserService(db, nil).GetUserByID(cmd.Context(), userID)
			if err != nil {
				return err
			}
			token, err := auth.IssueDevToken([]byte(conf.JWTSecret), user.ID, user.Role(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "customer", "Account to issue the token for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
