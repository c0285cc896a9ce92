package main

import (
	"fmt"

	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check store health and queued write depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(func(cfg *config.Config, facade *services.SyncFacade, remoteDB, localDB *gorm.DB) error {
			result := services.HealthCheck(cfg, remoteDB, localDB, facade.State())
			status := facade.Status()

			fmt.Fprintf(cmd.OutOrStdout(), "Status:         %s\n", result.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Sync state:     %s\n", result.SyncState)
			fmt.Fprintf(cmd.OutOrStdout(), "Remote store:   %s\n", result.RemoteStore)
			fmt.Fprintf(cmd.OutOrStdout(), "Local store:    %s\n", result.LocalStore)
			fmt.Fprintf(cmd.OutOrStdout(), "Pending writes: %d\n", status.PendingWrites)
			if result.ErrorMessage != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Error:          %s\n", result.ErrorMessage)
			}

			if result.Status != "healthy" {
				return fmt.Errorf("doctor found an unhealthy store")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
