package main

import (
	"fmt"
	"os"

	"github.com/shaoyi1998/blog-backend/internal/app"
	"github.com/shaoyi1998/blog-backend/internal/config"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "blog backend maintenance tool",
	Example: `blogctl migrate
blogctl reclaim
blogctl audit
blogctl token --user admin --root`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "config file path")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reclaimCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(tokenCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

func defaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func loadConfig() (*config.Config, error) {
	config.LoadDotEnv()
	pkglogger.InitStructured(os.Getenv("APP_ENV"))
	return config.Load(configPath)
}

// openApp connects to the database and storage configured for the server
func openApp(cfg *config.Config) (*app.App, error) {
	db, err := app.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store, err := app.NewStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return app.New(cfg, db, app.InitRedis(cfg), store), nil
}
