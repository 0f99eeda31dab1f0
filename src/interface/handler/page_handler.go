package handler

import (
	"errors"
	"net/http"

	"ria-board/src/domain"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PageHandler handles HTTP requests for page registry operations
type PageHandler struct {
	pages  *usecase.PageRegistry
	logger *logrus.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(pages *usecase.PageRegistry, logger *logrus.Logger) *PageHandler {
	return &PageHandler{pages: pages, logger: logger}
}

// pageEntry is one display-order entry for a category.
type pageEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCustom    bool   `json:"isCustom"`
}

// ListPages returns the ordered pages of a category
func (h *PageHandler) ListPages(c *gin.Context) {
	if !ensureLoaded(c, h.pages) {
		return
	}

	category := domain.Category(c.Query("category"))
	if !category.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid category",
			Message: usecase.ErrInvalidCategory.Error(),
		})
		return
	}

	names := h.pages.PagesForCategory(category)
	entries := make([]pageEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, pageEntry{
			Name:        name,
			Description: h.pages.DescriptionFor(category, name),
			IsCustom:    h.pages.IsCustomPage(category, name),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"pages":    entries,
	})
}

// ListCustomPages returns every custom page record
func (h *PageHandler) ListCustomPages(c *gin.Context) {
	if !ensureLoaded(c, h.pages) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"customPages": h.pages.CustomPages()})
}

// CreatePage creates a custom page
func (h *PageHandler) CreatePage(c *gin.Context) {
	var req CreatePageRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	page, err := h.pages.AddPage(c.Request.Context(), domain.Category(req.Category), req.Name, req.Description)
	if err != nil {
		h.logger.WithError(err).Error("ページの作成に失敗")
		c.JSON(pageErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to create page",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"page_id":  page.ID,
		"category": page.Category,
	}).Info("ページを作成しました")
	c.JSON(http.StatusCreated, page)
}

// UpdatePage renames a custom page and updates its description, cascading the
// rename to the cards on it
func (h *PageHandler) UpdatePage(c *gin.Context) {
	var req UpdatePageRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	id := c.Param("id")
	if err := h.pages.RenamePage(c.Request.Context(), id, req.Name, req.Description); err != nil {
		h.logger.WithError(err).WithField("page_id", id).Error("ページの更新に失敗")
		c.JSON(pageErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to update page",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePage deletes a custom page, handling the cards left on it according
// to the policy query parameter (delete or archive)
func (h *PageHandler) DeletePage(c *gin.Context) {
	policy := domain.OrphanPolicy(c.DefaultQuery("policy", string(domain.OrphanDelete)))

	id := c.Param("id")
	if err := h.pages.DeletePage(c.Request.Context(), id, policy); err != nil {
		h.logger.WithError(err).WithField("page_id", id).Error("ページの削除に失敗")
		c.JSON(pageErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to delete page",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"page_id": id,
		"policy":  policy,
	}).Info("ページを削除しました")
	c.Status(http.StatusNoContent)
}

// ReorderPages persists a new page order for a category
func (h *PageHandler) ReorderPages(c *gin.Context) {
	var req ReorderPagesRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	err := h.pages.ReorderPages(c.Request.Context(), domain.Category(req.Category), req.Names)
	if err != nil {
		h.logger.WithError(err).Error("ページの並び替えに失敗")
		c.JSON(pageErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to reorder pages",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// pageErrorStatus maps page usecase errors to HTTP status codes.
func pageErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrPageNameExists):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrPageNameEmpty),
		errors.Is(err, usecase.ErrPageNameTooLong),
		errors.Is(err, usecase.ErrPageDescriptionTooLong),
		errors.Is(err, usecase.ErrInvalidOrphanPolicy),
		errors.Is(err, usecase.ErrInvalidCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
