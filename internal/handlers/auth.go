package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	Auth *services.AuthService
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsBody true "Credentials"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	u, err := h.Auth.Register(body.Username, body.Password)
	if err != nil {
		if err.Error() == "username already exists" {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "auth.register.duplicate")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "auth.register")
	}

	return utils.SuccessResponse(c, u, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Log in and receive a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsBody true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	u, token, err := h.Auth.Login(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.login.credentials")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "auth.login")
	}

	return utils.SuccessResponse(c, fiber.Map{"user": u, "token": token}, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Drop the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	if token != "" {
		h.Auth.Logout(token)
	}
	return utils.SuccessResponse(c, nil, fiber.StatusOK)
}
