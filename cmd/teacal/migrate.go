package main

import (
	"fmt"

	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	migrateUser  string
	migrateCheck bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate local tea records to the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateUser == "" {
			return fmt.Errorf("--user is required")
		}
		return withStores(func(cfg *config.Config, facade *services.SyncFacade, remoteDB, localDB *gorm.DB) error {
			if migrateCheck {
				check, err := facade.CheckMigration(migrateUser)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Local records:  %d\n", check.LocalRecordCount)
				fmt.Fprintf(cmd.OutOrStdout(), "Remote records: %d\n", check.RemoteRecordCount)
				fmt.Fprintf(cmd.OutOrStdout(), "Needs migration: %v\n", check.NeedsMigration)
				return nil
			}
			result, err := facade.Migrate(migrateUser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d record(s)\n", result.MigratedCount)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateUser, "user", "", "User ID whose records to migrate")
	migrateCmd.Flags().BoolVar(&migrateCheck, "check", false, "Only report counts, do not migrate")
}
