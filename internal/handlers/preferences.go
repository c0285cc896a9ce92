package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// PreferenceHandler serves the generic key/value settings plus the weekly
// budget convenience endpoints built on top of them.
type PreferenceHandler struct {
	Facade *services.SyncFacade
}

// GetPreferences handles GET /api/preferences
// @Summary Get all preferences
// @Tags Preferences
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /preferences [get]
func (h *PreferenceHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "preferences.authorization")
	}

	prefs, err := h.Facade.GetPreferences(userID)
	if err != nil {
		return storeError(c, err, "getPreferences")
	}

	return utils.SuccessResponse(c, prefs, fiber.StatusOK)
}

// SetPreference handles PUT /api/preferences/:key
// @Summary Set one preference
// @Description Upserts the value under the key; the value may be any JSON
// @Tags Preferences
// @Accept json
// @Produce json
// @Param key path string true "Preference key"
// @Param body body object true "JSON value"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /preferences/{key} [put]
func (h *PreferenceHandler) SetPreference(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "preferences.authorization")
	}

	key := c.Params("key")
	value := json.RawMessage(c.Body())
	if len(value) == 0 || !json.Valid(value) {
		return utils.ErrorResponse(c, "Invalid input: body must be JSON", fiber.StatusBadRequest, "preferences.validation.input")
	}

	if err := h.Facade.SetPreference(userID, key, value); err != nil {
		return storeError(c, err, "setPreference")
	}

	return utils.SuccessResponse(c, nil, fiber.StatusOK)
}

// GetBudget handles GET /api/budget
// @Summary Get the weekly calorie budget
// @Description Falls back to the last locally mirrored value during a remote outage
// @Tags Budget
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /budget [get]
func (h *PreferenceHandler) GetBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "budget.authorization")
	}

	budget := h.Facade.GetBudget(userID)
	return utils.SuccessResponse(c, fiber.Map{"weeklyBudget": budget}, fiber.StatusOK)
}

// SetBudget handles PUT /api/budget
// @Summary Set the weekly calorie budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param body body object true "{\"weeklyBudget\": 2000}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /budget [put]
func (h *PreferenceHandler) SetBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "budget.authorization")
	}

	var body struct {
		WeeklyBudget *int `json:"weeklyBudget"`
	}
	if err := c.BodyParser(&body); err != nil || body.WeeklyBudget == nil {
		return utils.ErrorResponse(c, "Invalid input: weeklyBudget is required", fiber.StatusBadRequest, "budget.validation.input")
	}

	if err := h.Facade.SetBudget(userID, *body.WeeklyBudget); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "setBudget")
	}

	return utils.SuccessResponse(c, fiber.Map{"weeklyBudget": *body.WeeklyBudget}, fiber.StatusOK)
}
