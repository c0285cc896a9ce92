package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/calorie"
	"github.com/qingchaji/teacal-sync/internal/types"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// CalorieHandler exposes the static calorie model for client-side previews.
type CalorieHandler struct{}

// Ingredients handles GET /api/ingredients
// @Summary List the topping reference table
// @Tags Calories
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /ingredients [get]
func (h *CalorieHandler) Ingredients(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, calorie.Ingredients(), fiber.StatusOK)
}

// Estimate handles POST /api/calories/estimate
// @Summary Estimate calories for a drink
// @Description Same model as record logging; malformed values fall back, never error
// @Tags Calories
// @Accept json
// @Produce json
// @Param body body object true "{size, sweetness_level, toppings}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /calories/estimate [post]
func (h *CalorieHandler) Estimate(c *fiber.Ctx) error {
	var body struct {
		Size           string               `json:"size"`
		SweetnessLevel types.SweetnessLevel `json:"sweetness_level"`
		Toppings       types.StringList     `json:"toppings"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "calories.validation.input")
	}

	total := calorie.EstimateRecord(body.Size, body.SweetnessLevel.Int(), body.Toppings.Slice())
	return utils.SuccessResponse(c, fiber.Map{
		"estimated_calories": total,
		"base_calories":      calorie.ForBase(body.Size, body.SweetnessLevel.Int()),
		"sugar_grams":        calorie.SugarGrams(body.Size, body.SweetnessLevel.Int()),
	}, fiber.StatusOK)
}
