package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// ProfileHandler serves user-profile reads and edits.
type ProfileHandler struct {
	Facade *services.SyncFacade
}

// GetProfile handles GET /api/profile
// @Summary Get the authenticated user's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "profile.authorization")
	}

	u, err := h.Facade.GetProfile(userID)
	if err != nil {
		return storeError(c, err, "getProfile")
	}

	return utils.SuccessResponse(c, u, fiber.StatusOK)
}

// UpdateProfile handles PUT /api/profile
// @Summary Update profile attributes
// @Description Username is immutable; physiological fields are optional
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body services.ProfilePatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "profile.authorization")
	}

	var patch services.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "profile.validation.input")
	}

	u, err := h.Facade.UpdateProfile(userID, &patch)
	if err != nil {
		return storeError(c, err, "updateProfile")
	}

	return utils.SuccessResponse(c, u, fiber.StatusOK)
}
