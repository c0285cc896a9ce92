package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// SyncHandler serves migration and sync-state operations.
type SyncHandler struct {
	Facade *services.SyncFacade
}

// Migrate handles POST /api/migrate
// @Summary Copy local records into the remote store
// @Description One-shot, idempotent; skips record IDs the remote already holds
// @Tags Sync
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /migrate [post]
func (h *SyncHandler) Migrate(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "sync.authorization")
	}

	result, err := h.Facade.Migrate(userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "migrate")
	}

	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// CheckMigration handles GET /api/migrate
// @Summary Check whether a migration would move anything
// @Tags Sync
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /migrate [get]
func (h *SyncHandler) CheckMigration(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "sync.authorization")
	}

	check, err := h.Facade.CheckMigration(userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "checkMigration")
	}

	return utils.SuccessResponse(c, check, fiber.StatusOK)
}

// Flush handles POST /api/sync/flush
// @Summary Replay queued writes against the remote store
// @Tags Sync
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /sync/flush [post]
func (h *SyncHandler) Flush(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "sync.authorization")
	}

	flushed, err := h.Facade.Resync()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "resync")
	}

	return utils.SuccessResponse(c, fiber.Map{"flushed": flushed}, fiber.StatusOK)
}

// Status handles GET /api/sync/status
// @Summary Report the sync state and outbox depth
// @Tags Sync
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.Facade.Status(), fiber.StatusOK)
}
