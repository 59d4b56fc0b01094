package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/prost/internal/display"
	"github.com/MarkoPoloResearchLab/prost/internal/oplog"
	"github.com/MarkoPoloResearchLab/prost/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/prost/pkg/prost"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	flagDatabase        = "db"
	flagLimit           = "limit"
	configKeyDatabase   = "db"
	configKeyLimit      = "display_limit"
	envKeyDatabase      = "PROST_DB"
	envKeyLimit         = "PROST_DISPLAY_LIMIT"
	defaultDatabaseFile = "sqlite.db"
)

type runtimeConfig struct {
	DatabasePath string
	DisplayLimit int
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prost: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	rootCommand := &cobra.Command{
		Use:           "prost",
		Short:         "Shared-tab drink ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(cmd.Context(), cfg)
		},
	}

	rootCommand.PersistentFlags().String(flagDatabase, defaultDatabaseFile, "Location of the database")
	rootCommand.PersistentFlags().Int(flagLimit, prost.DefaultRecentLimit, "Maximum rows in the purchase display")

	rootCommand.AddCommand(
		newDisplayCommand(cfg),
		newStockCommand(cfg),
		newDebtsCommand(cfg),
	)
	return rootCommand
}

func newDisplayCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "display",
		Short: "Show recent purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(cmd.Context(), cfg)
		},
	}
}

func newStockCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Show remaining stock per drink",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStock(cmd.Context(), cfg)
		},
	}
}

func newDebtsCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "debts",
		Short: "Show who owes whom",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebts(cmd.Context(), cfg)
		},
	}
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv(configKeyDatabase, envKeyDatabase); err != nil {
		return err
	}
	if err := viper.BindEnv(configKeyLimit, envKeyLimit); err != nil {
		return err
	}

	persistentFlags := cmd.Root().PersistentFlags()
	if err := viper.BindPFlag(configKeyDatabase, persistentFlags.Lookup(flagDatabase)); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyLimit, persistentFlags.Lookup(flagLimit)); err != nil {
		return err
	}

	cfg.DatabasePath = viper.GetString(configKeyDatabase)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabaseFile
	}
	cfg.DisplayLimit = viper.GetInt(configKeyLimit)
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = prost.DefaultRecentLimit
	}
	return nil
}

func runDisplay(ctx context.Context, cfg *runtimeConfig) error {
	return withService(ctx, cfg, func(service *prost.Service) error {
		records, err := service.RecentPurchases(ctx, cfg.DisplayLimit)
		if err != nil {
			return err
		}
		display.RenderPurchases(os.Stdout, records)
		return nil
	})
}

func runStock(ctx context.Context, cfg *runtimeConfig) error {
	return withService(ctx, cfg, func(service *prost.Service) error {
		levels, err := service.StockStatus(ctx)
		if err != nil {
			return err
		}
		display.RenderStock(os.Stdout, levels)
		return nil
	})
}

func runDebts(ctx context.Context, cfg *runtimeConfig) error {
	return withService(ctx, cfg, func(service *prost.Service) error {
		debts, err := service.UserDebts(ctx)
		if err != nil {
			return err
		}
		display.RenderDebts(os.Stdout, debts)
		return nil
	})
}

func withService(ctx context.Context, cfg *runtimeConfig, fn func(service *prost.Service) error) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, err := openDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = cleanup() }()

	if err := gormstore.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := gormstore.New(gormDB)
	clock := func() time.Time { return time.Now().UTC() }
	service, err := prost.NewService(store, clock, prost.WithOperationLogger(oplog.New(logger)))
	if err != nil {
		return fmt.Errorf("service init: %w", err)
	}
	return fn(service)
}

func openDatabase(ctx context.Context, path string) (*gorm.DB, func() error, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}
