package main

import (
	"fmt"
	"os"

	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/database"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var localDBPath string

var rootCmd = &cobra.Command{
	Use:   "teacal",
	Short: "teacal manages the TeaCal sync stores from your terminal",
	Long:  "teacal is the operations CLI for the TeaCal sync service: migrate local records, flush queued writes, and inspect store health.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&localDBPath, "local-db", "", "Path to the local SQLite store (overrides LOCAL_DB_PATH)")
}

// withStores opens both stores from the environment configuration and
// runs fn with a facade over them. The remote side may be nil.
func withStores(fn func(cfg *config.Config, facade *services.SyncFacade, remoteDB, localDB *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if localDBPath != "" {
		cfg.LocalDBPath = localDBPath
	}

	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		return err
	}
	defer database.Close(localDB)
	local := services.NewLocalStore(localDB)

	var remoteDB *gorm.DB
	var remote services.Store
	if cfg.RemoteConfigured() {
		remoteDB, err = database.ConnectRemote(cfg)
		if err != nil {
			return err
		}
		defer database.Close(remoteDB)
		if err := database.MigrateRemote(remoteDB); err != nil {
			return err
		}
		remote = services.NewRemoteStore(remoteDB)
	}

	facade := services.NewSyncFacade(remote, local, cfg.DefaultWeeklyBudget)
	return fn(cfg, facade, remoteDB, localDB)
}
