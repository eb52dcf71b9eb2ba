package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Domenick1991/skysailor/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate up|down|step-up|drop",
	Short: "Apply or roll back the database schema",
	Long: `Run the embedded migrations against the configured database.

  up       apply every pending migration
  down     roll back the last migration
  step-up  apply the next migration only
  drop     roll back every migration`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := args[0]
	if !migrate.ValidAction(action) {
		return fmt.Errorf("unknown migration action %q", action)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return migrate.Run(cfg.Database, action)
}
