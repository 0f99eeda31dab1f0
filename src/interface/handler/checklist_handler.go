package handler

import (
	"errors"
	"net/http"

	"ria-board/src/domain"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChecklistHandler handles HTTP requests for the pre-launch checklist
type ChecklistHandler struct {
	checklist *usecase.ChecklistStore
	logger    *logrus.Logger
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklist *usecase.ChecklistStore, logger *logrus.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklist: checklist, logger: logger}
}

// GetChecklist returns the checklist structure with per-item states and
// per-page progress
func (h *ChecklistHandler) GetChecklist(c *gin.Context) {
	if !ensureLoaded(c, h.checklist) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pages":    domain.ChecklistPages,
		"states":   h.checklist.States(),
		"progress": h.checklist.Progress(),
	})
}

// SetItemStatus sets the status of one checklist item
func (h *ChecklistHandler) SetItemStatus(c *gin.Context) {
	var req SetChecklistStatusRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	itemID := c.Param("id")
	err := h.checklist.SetStatus(c.Request.Context(), itemID, domain.ChecklistStatus(req.Status))
	if err != nil {
		h.logger.WithError(err).WithField("item_id", itemID).Error("チェックリスト項目の更新に失敗")

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, usecase.ErrChecklistItemNotFound):
			status = http.StatusNotFound
		case errors.Is(err, usecase.ErrInvalidChecklistStatus):
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponseDTO{
			Error:   "Failed to update checklist item",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
