// records.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/utils"
)

// RecordHandler serves tea-record CRUD through the sync facade.
type RecordHandler struct {
	Facade *services.SyncFacade
}

// GetRecords handles GET /api/records?limit=&offset=
// @Summary List tea records
// @Description Returns the authenticated user's tea records, newest first
// @Tags Records
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /records [get]
func (h *RecordHandler) GetRecords(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "records.authorization")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	recs, err := h.Facade.GetRecords(userID, limit, offset)
	if err != nil {
		return storeError(c, err, "getRecords")
	}

	return utils.SuccessResponse(c, recs, fiber.StatusOK)
}

// AddRecord handles POST /api/records
// @Summary Log a tea record
// @Description Adds a consumption record; computes the calorie estimate when omitted
// @Tags Records
// @Accept json
// @Produce json
// @Param body body services.RecordInput true "Record to add"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /records [post]
func (h *RecordHandler) AddRecord(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "records.authorization")
	}

	var input services.RecordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "records.validation.input")
	}
	// The owning user comes from the session, never the body
	input.UserID = userID

	rec, err := h.Facade.AddRecord(&input)
	if err != nil {
		if strings.Contains(err.Error(), "invalid record") {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "records.validation.input")
		}
		return storeError(c, err, "addRecord")
	}

	return utils.SuccessResponse(c, rec, fiber.StatusCreated)
}

// UpdateRecord handles PUT /api/records/:id
// @Summary Edit a tea record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param body body services.RecordPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /records/{id} [put]
func (h *RecordHandler) UpdateRecord(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "records.authorization")
	}

	id := c.Params("id")

	var patch services.RecordPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "records.validation.input")
	}

	rec, err := h.Facade.UpdateRecord(id, userID, &patch)
	if err != nil {
		if strings.Contains(err.Error(), "invalid record patch") {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "records.validation.input")
		}
		return storeError(c, err, "updateRecord")
	}

	return utils.SuccessResponse(c, rec, fiber.StatusOK)
}

// DeleteRecord handles DELETE /api/records/:id
// @Summary Delete a tea record
// @Description Succeeds against whichever store holds the record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /records/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "records.authorization")
	}

	id := c.Params("id")

	if err := h.Facade.DeleteRecord(id, userID); err != nil {
		return storeError(c, err, "deleteRecord")
	}

	return utils.SuccessResponse(c, nil, fiber.StatusOK)
}
