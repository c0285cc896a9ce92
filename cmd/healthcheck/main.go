// main.go
//
// Dual-store data sync service for TeaCal (轻茶纪), a milk-tea calorie tracker
// Copyright (c) 2026 TeaCal Project Contributors
//
// This file is part of teacal-sync.
// teacal-sync is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// teacal-sync is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with teacal-sync.
// If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/database"
	"github.com/qingchaji/teacal-sync/internal/services"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Local store is always expected to open
	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer database.Close(localDB)

	// Remote store only when configured
	var remoteDB *gorm.DB
	state := services.StateOffline
	if cfg.RemoteConfigured() {
		state = services.StateOnline
		remoteDB, err = database.ConnectRemote(cfg)
		if err != nil {
			// Reported by HealthCheck as degraded, not fatal
			state = services.StateDegraded
			remoteDB = nil
		} else {
			defer database.Close(remoteDB)
		}
	}

	// Perform health check
	result := services.HealthCheck(cfg, remoteDB, localDB, state)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
