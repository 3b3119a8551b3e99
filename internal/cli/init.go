package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/config"
	"github.com/example/sift/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the sift database",
		Long:  `Initialize the sift database at ~/.sift/sift.db with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing sift database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			// Materialize the config file. Load returns defaults when the
			// file is missing, so this round-trip creates it without
			// touching an existing one's contents.
			if cfg, err := config.Load(); err == nil {
				if err := config.Save(cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
			}

			if demo {
				database, err := db.GetDB()
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				if err := db.SeedDemoData(database); err != nil {
					return fmt.Errorf("failed to seed demo data: %w", err)
				}
				fmt.Println("✓ Demo data loaded (snack assistant traces)")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  sift trace import traces.json")
			fmt.Println("  sift status")

			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Seed demo traces and tags")

	return cmd
}
