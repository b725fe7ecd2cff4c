package main

import (
	"fmt"
	"os"

	"rentnest-backend/internal/config"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/migrate"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rentnest-migrate",
		Short: "RentNest schema management",
	}
	rootCmd.PersistentFlags().String("config", "config/config.dev.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Log SQL statements")

	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB prefers DATABASE_URL and falls back to the server configuration.
func openDB(cmd *cobra.Command) (*gorm.DB, error) {
	debug, _ := cmd.Flags().GetBool("debug")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		logger.Initialize(cfg.Log.Level, cfg.Log.Format)
		dsn = cfg.GetDatabaseConnectionString()
	}
	return migrate.OpenPostgres(dsn, debug)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create or update all tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			if err := migrate.Up(db); err != nil {
				return err
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			statuses, err := migrate.Status(db)
			if err != nil {
				return err
			}

			fmt.Printf("%-20s  %-8s\n", "Table", "Status")
			for _, s := range statuses {
				status := "Pending"
				if s.Applied {
					status = "Applied"
				}
				fmt.Printf("%-20s  %-8s\n", s.Table, status)
			}
			return nil
		},
	}
}
