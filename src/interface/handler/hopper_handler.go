package handler

import (
	"errors"
	"net/http"

	"ria-board/src/domain"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HopperHandler handles HTTP requests for the idea hopper
type HopperHandler struct {
	hopper *usecase.HopperStore
	logger *logrus.Logger
}

// NewHopperHandler creates a new hopper handler
func NewHopperHandler(hopper *usecase.HopperStore, logger *logrus.Logger) *HopperHandler {
	return &HopperHandler{hopper: hopper, logger: logger}
}

// ListHopperIdeas retrieves all captured ideas awaiting triage
func (h *HopperHandler) ListHopperIdeas(c *gin.Context) {
	if !ensureLoaded(c, h.hopper) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": h.hopper.Ideas()})
}

// CreateHopperIdea captures a new idea into the hopper
func (h *HopperHandler) CreateHopperIdea(c *gin.Context) {
	var req CreateHopperRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	idea, err := h.hopper.Add(c.Request.Context(), usecase.AddHopperRequest{
		Title:         req.Title,
		Description:   req.Description,
		ReferenceURLs: req.ReferenceURLs,
		Priority:      domain.Priority(req.Priority),
		Tags:          req.Tags,
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.WithError(err).Error("ホッパーアイデアの作成に失敗")
		c.JSON(hopperErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to create hopper idea",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, idea)
}

// UpdateHopperIdea applies a partial update to a hopper idea
func (h *HopperHandler) UpdateHopperIdea(c *gin.Context) {
	var req UpdateHopperRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	update := usecase.UpdateHopperRequest{
		Title:         req.Title,
		Description:   req.Description,
		ReferenceURLs: req.ReferenceURLs,
		Tags:          req.Tags,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status := domain.HopperStatus(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		update.Priority = &priority
	}

	id := c.Param("id")
	if err := h.hopper.Update(c.Request.Context(), id, update); err != nil {
		h.logger.WithError(err).WithField("hopper_id", id).Error("ホッパーアイデアの更新に失敗")
		c.JSON(hopperErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to update hopper idea",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteHopperIdea removes an idea from the hopper
func (h *HopperHandler) DeleteHopperIdea(c *gin.Context) {
	id := c.Param("id")
	if err := h.hopper.Remove(c.Request.Context(), id); err != nil {
		c.JSON(hopperErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to delete hopper idea",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// hopperErrorStatus maps hopper usecase errors to HTTP status codes.
func hopperErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrHopperTitleEmpty),
		errors.Is(err, usecase.ErrInvalidHopperStatus),
		errors.Is(err, usecase.ErrInvalidPriority):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
