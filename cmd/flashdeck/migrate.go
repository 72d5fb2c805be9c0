package main

import (
	"github.com/phrazzld/flashdeck/internal/platform/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|reset|status|version]",
	Short: "Manage the database schema",
	Long: `Run schema migrations against the configured store. Other commands
apply pending migrations automatically; this command exists for rolling
back, resetting and inspecting the schema. The default is up.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "reset", "status", "version"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	name := string(migrate.CommandUp)
	if len(args) == 1 {
		name = args[0]
	}
	command, err := migrate.ParseCommand(name)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg, appOptions{logTo: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	src, err := migrationSource(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openDatabase(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrate.Run(ctx, db, src, command, log)
}
