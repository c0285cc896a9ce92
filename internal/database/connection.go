// connection.go
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

package database

import (
	"fmt"
	"log"

	glebsqlite "github.com/glebarez/sqlite"
	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectRemote establishes the remote store connection based on DB_TYPE.
// Callers must check cfg.RemoteConfigured() first; running without a remote
// store is a supported mode, not a connection failure.
func ConnectRemote(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = mysql.Open(dsn)

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		dialector = postgres.Open(dsn)

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		dialector = sqlite.Open(cfg.DBDatabase)

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(cfg.DBConnectionLimit / 2)

	log.Printf("Connected to %s remote database: %s", cfg.DBType, cfg.DBDatabase)

	return db, nil
}

// OpenLocal opens the local fallback store, a single-file SQLite database
// on the pure-Go driver. It is always available, remote-configured or not.
func OpenLocal(path string) (*gorm.DB, error) {
	db, err := gorm.Open(glebsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}

	// Single writer; the local store is a read-modify-write blob per key
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateLocal(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateRemote runs automatic migrations for the remote store models
func MigrateRemote(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TeaRecord{},
		&models.UserPreference{},
	)
}

// MigrateLocal runs automatic migrations for the local fallback store
func MigrateLocal(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.KVEntry{},
		&models.OutboxEntry{},
	)
}

// Close closes a database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
