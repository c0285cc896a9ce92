// common.go
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

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// getUserID extracts the user ID placed in context by the auth middleware.
func getUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user not found in context")
	}
	return userID, nil
}

// storeError maps a facade error onto the standard error envelope.
func storeError(c *fiber.Ctx, err error, errorType string) error {
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c, "Resource not found")
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
