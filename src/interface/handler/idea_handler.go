package handler

import (
	"errors"
	"net/http"

	"ria-board/src/domain"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdeaHandler handles HTTP requests for idea card operations
type IdeaHandler struct {
	ideas  *usecase.IdeaStore
	logger *logrus.Logger
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(ideas *usecase.IdeaStore, logger *logrus.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, logger: logger}
}

// ListIdeas retrieves idea cards, optionally filtered by category and page
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	if !ensureLoaded(c, h.ideas) {
		return
	}

	category := c.Query("category")
	page := c.Query("page")

	var ideas []domain.Idea
	switch {
	case category != "":
		if !domain.Category(category).IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponseDTO{
				Error:   "Invalid category",
				Message: usecase.ErrInvalidCategory.Error(),
			})
			return
		}
		if page != "" {
			ideas = h.ideas.IdeasOn(domain.Category(category), page)
		} else {
			ideas = h.ideas.IdeasIn(domain.Category(category))
		}
	default:
		ideas = h.ideas.Ideas()
	}

	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

// GetIdea retrieves a single idea card by ID
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	if !ensureLoaded(c, h.ideas) {
		return
	}

	idea, err := h.ideas.IdeaByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponseDTO{
			Error: "Idea not found",
		})
		return
	}
	c.JSON(http.StatusOK, idea)
}

// CreateIdea creates a new idea card
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	var req CreateIdeaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	idea, err := h.ideas.Add(c.Request.Context(), usecase.AddIdeaRequest{
		Text:        req.Text,
		Category:    domain.Category(req.Category),
		Subcategory: req.Subcategory,
		Type:        domain.IdeaType(req.Type),
		Stage:       domain.Stage(req.Stage),
		Goal:        req.Goal,
		Images:      req.Images,
		Notes:       req.Notes,
		LinkedDocs:  req.LinkedDocs,
	})
	if err != nil {
		h.logger.WithError(err).Error("カードの作成に失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to create idea",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithField("idea_id", idea.ID).Info("カードを作成しました")
	c.JSON(http.StatusCreated, idea)
}

// UpdateIdea applies a partial update to an idea card
func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	var req UpdateIdeaRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	update := usecase.UpdateIdeaRequest{
		Text:        req.Text,
		Subcategory: req.Subcategory,
		Refined:     req.Refined,
		Pinned:      req.Pinned,
		Goal:        req.Goal,
		Images:      req.Images,
		Notes:       req.Notes,
		LinkedDocs:  req.LinkedDocs,
	}
	if req.Stage != nil {
		stage := domain.Stage(*req.Stage)
		update.Stage = &stage
	}
	if req.Type != nil {
		ideaType := domain.IdeaType(*req.Type)
		update.Type = &ideaType
	}

	id := c.Param("id")
	if err := h.ideas.Update(c.Request.Context(), id, update); err != nil {
		h.logger.WithError(err).WithField("idea_id", id).Error("カードの更新に失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to update idea",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteIdea removes an idea card
func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	id := c.Param("id")
	if err := h.ideas.Remove(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).WithField("idea_id", id).Error("カードの削除に失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to delete idea",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithField("idea_id", id).Info("カードを削除しました")
	c.Status(http.StatusNoContent)
}

// SetStage moves an idea card between kanban stages
func (h *IdeaHandler) SetStage(c *gin.Context) {
	var req SetStageRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	id := c.Param("id")
	if err := h.ideas.SetStage(c.Request.Context(), id, domain.Stage(req.Stage)); err != nil {
		h.logger.WithError(err).WithField("idea_id", id).Error("ステージの変更に失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to change stage",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// TogglePin toggles the pinned flag of an idea card
func (h *IdeaHandler) TogglePin(c *gin.Context) {
	id := c.Param("id")
	if err := h.ideas.TogglePinned(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).WithField("idea_id", id).Error("ピン留めの切り替えに失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to toggle pin",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleFocus toggles workshop focus for an idea within its page
func (h *IdeaHandler) ToggleFocus(c *gin.Context) {
	var req ToggleFocusRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	id := c.Param("id")
	err := h.ideas.ToggleFocus(c.Request.Context(), id, domain.Category(req.Category), req.Subcategory)
	if err != nil {
		h.logger.WithError(err).WithField("idea_id", id).Error("フォーカスの切り替えに失敗")
		c.JSON(ideaErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to toggle focus",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// ideaErrorStatus maps idea usecase errors to HTTP status codes.
func ideaErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrIdeaNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidCategory),
		errors.Is(err, usecase.ErrInvalidStage),
		errors.Is(err, usecase.ErrInvalidIdeaType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
