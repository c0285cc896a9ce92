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
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/qingchaji/teacal-sync/internal/config"
	"github.com/qingchaji/teacal-sync/internal/database"
	"github.com/qingchaji/teacal-sync/internal/handlers"
	"github.com/qingchaji/teacal-sync/internal/middleware"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/types"
	"gorm.io/gorm"

	_ "github.com/qingchaji/teacal-sync/docs/api" // Swagger docs
)

// @title TeaCal Sync API
// @version 1.0.0
// @description Dual-store persistence and sync service for the TeaCal milk-tea calorie tracker
// @termsOfService http://swagger.io/terms/

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Local fallback store is always available
	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer database.Close(localDB)
	local := services.NewLocalStore(localDB)

	// Remote store only when configured; its absence is local-only mode,
	// not an error
	var remoteDB *gorm.DB
	var remote services.Store
	if cfg.RemoteConfigured() {
		remoteDB, err = database.ConnectRemote(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to remote database: %v", err)
		}
		defer database.Close(remoteDB)

		if err := database.MigrateRemote(remoteDB); err != nil {
			log.Fatalf("Failed to run remote migrations: %v", err)
		}
		remote = services.NewRemoteStore(remoteDB)
	} else {
		log.Printf("No remote database configured, running local-only")
	}

	facade := services.NewSyncFacade(remote, local, cfg.DefaultWeeklyBudget)
	auth := services.NewAuthService(facade)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("teacal_sync")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{Auth: auth}
	recordHandler := &handlers.RecordHandler{Facade: facade}
	profileHandler := &handlers.ProfileHandler{Facade: facade}
	prefHandler := &handlers.PreferenceHandler{Facade: facade}
	syncHandler := &handlers.SyncHandler{Facade: facade}
	calorieHandler := &handlers.CalorieHandler{}

	// Public routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/ingredients", calorieHandler.Ingredients)
	api.Post("/calories/estimate", calorieHandler.Estimate)
	api.Get("/sync/status", syncHandler.Status)
	api.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, remoteDB, localDB, facade.State())
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Authenticated routes
	authed := api.Group("", middleware.AuthUser(auth))
	authed.Post("/auth/logout", authHandler.Logout)
	authed.Get("/records", recordHandler.GetRecords)
	authed.Post("/records", recordHandler.AddRecord)
	authed.Put("/records/:id", recordHandler.UpdateRecord)
	authed.Delete("/records/:id", recordHandler.DeleteRecord)
	authed.Get("/profile", profileHandler.GetProfile)
	authed.Put("/profile", profileHandler.UpdateProfile)
	authed.Get("/preferences", prefHandler.GetPreferences)
	authed.Put("/preferences/:key", prefHandler.SetPreference)
	authed.Get("/budget", prefHandler.GetBudget)
	authed.Put("/budget", prefHandler.SetBudget)
	authed.Get("/migrate", syncHandler.CheckMigration)
	authed.Post("/migrate", syncHandler.Migrate)
	authed.Post("/sync/flush", syncHandler.Flush)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"error":     "[404] Resource Not Found",
			"success":   false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s (sync state: %s)", cfg.Port, facade.State())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"error":     message,
		"success":   false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
