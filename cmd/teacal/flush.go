package main

import (
	"fmt"

	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Replay queued local writes against the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(func(cfg *config.Config, facade *services.SyncFacade, remoteDB, localDB *gorm.DB) error {
			flushed, err := facade.Resync()
			fmt.Fprintf(cmd.OutOrStdout(), "Flushed %d queued write(s)\n", flushed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync state: %s\n", facade.State())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
