package handler

import (
	"errors"
	"net/http"

	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ConsultantHandler handles HTTP requests for the assistant's knowledge base
// and settings
type ConsultantHandler struct {
	consultant *usecase.ConsultantStore
	logger     *logrus.Logger
}

// NewConsultantHandler creates a new consultant handler
func NewConsultantHandler(consultant *usecase.ConsultantStore, logger *logrus.Logger) *ConsultantHandler {
	return &ConsultantHandler{consultant: consultant, logger: logger}
}

// ListCanonDocs retrieves the knowledge-base documents
func (h *ConsultantHandler) ListCanonDocs(c *gin.Context) {
	if !ensureLoaded(c, h.consultant) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"canonDocs": h.consultant.CanonDocs()})
}

// CreateCanonDoc adds a knowledge-base document
func (h *ConsultantHandler) CreateCanonDoc(c *gin.Context) {
	var req CreateCanonDocRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	doc, err := h.consultant.AddCanonDoc(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		h.logger.WithError(err).Error("ナレッジドキュメントの作成に失敗")

		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrCanonTitleEmpty) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponseDTO{
			Error:   "Failed to create canon document",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// DeleteCanonDoc removes a knowledge-base document
func (h *ConsultantHandler) DeleteCanonDoc(c *gin.Context) {
	id := c.Param("id")
	if err := h.consultant.DeleteCanonDoc(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).WithField("canon_id", id).Error("ナレッジドキュメントの削除に失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Error:   "Failed to delete canon document",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSettings retrieves the assistant settings
func (h *ConsultantHandler) GetSettings(c *gin.Context) {
	if !ensureLoaded(c, h.consultant) {
		return
	}
	c.JSON(http.StatusOK, h.consultant.Settings())
}

// SaveSettings replaces the assistant settings
func (h *ConsultantHandler) SaveSettings(c *gin.Context) {
	var req SaveSettingsRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	if err := h.consultant.SaveSettings(c.Request.Context(), req.UserContext, req.ProjectConstraints); err != nil {
		h.logger.WithError(err).Error("アシスタント設定の保存に失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Error:   "Failed to save settings",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.consultant.Settings())
}
