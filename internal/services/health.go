package services

import (
	"fmt"
	"log"

	"github.com/qingchaji/teacal-sync/internal/config"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	SyncState    string            `json:"sync_state"`
	RemoteStore  string            `json:"remote_store"`
	LocalStore   string            `json:"local_store"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck pings both stores. The remote store being absent is reported
// as "not-configured", which is healthy; unreachable is not.
func HealthCheck(cfg *config.Config, remoteDB, localDB *gorm.DB, state SyncState) HealthCheckResult {
	result := HealthCheckResult{
		Status:    "healthy",
		SyncState: state.String(),
		Details:   make(map[string]string),
	}

	if remoteDB == nil {
		result.RemoteStore = "not-configured"
	} else if err := ping(remoteDB); err != nil {
		// An unreachable remote degrades the service but the local
		// fallback keeps it alive
		result.RemoteStore = "unreachable"
		result.Details["remote_error"] = err.Error()
		log.Printf("Health check - remote store ping failed: %v", err)
	} else {
		result.RemoteStore = "ok"
		result.Details["remote_type"] = cfg.DBType
		result.Details["remote_name"] = cfg.DBDatabase
	}

	if err := ping(localDB); err != nil {
		result.Status = "unhealthy"
		result.LocalStore = "unreachable"
		result.Details["local_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Local store ping failed: %v", err)
		log.Printf("Health check failed - local store ping: %v", err)
	} else {
		result.LocalStore = "ok"
		result.Details["local_path"] = cfg.LocalDBPath
	}

	return result
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
