package handler

import (
	"errors"
	"net/http"

	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 50MB
const maxUploadSize = 50 << 20

// DocumentHandler handles HTTP requests for the document library
type DocumentHandler struct {
	library *usecase.DocumentLibrary
	logger  *logrus.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(library *usecase.DocumentLibrary, logger *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{library: library, logger: logger}
}

// ListDocuments retrieves document metadata, optionally filtered by a search query
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	if !ensureLoaded(c, h.library) {
		return
	}
	docs := h.library.Documents(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument retrieves a single document's metadata
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	if !ensureLoaded(c, h.library) {
		return
	}
	doc, err := h.library.DocumentByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponseDTO{
			Error: "Document not found",
		})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ListTags retrieves recently used document tags
func (h *DocumentHandler) ListTags(c *gin.Context) {
	if !ensureLoaded(c, h.library) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": h.library.RecentTags(0)})
}

// UploadDocument stores an uploaded file and its metadata
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	if c.Request.ContentLength > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponseDTO{
			Error: "File is too large",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "File is required",
			Message: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Error("アップロードファイルのオープンに失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Error: "Failed to read file",
		})
		return
	}
	defer file.Close()

	doc, err := h.library.Upload(c.Request.Context(), usecase.UploadDocumentRequest{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
		Page:        c.PostForm("page"),
		Section:     c.PostForm("section"),
		Tags:        c.PostFormArray("tags"),
		Summary:     c.PostForm("summary"),
	})
	if err != nil {
		h.logger.WithError(err).WithField("filename", fileHeader.Filename).Error("ドキュメントのアップロードに失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Error:   "Failed to upload document",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"size":        fileHeader.Size,
	}).Info("ドキュメントをアップロードしました")
	c.JSON(http.StatusCreated, doc)
}

// DeleteDocument removes a document and its stored file
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := h.library.Delete(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).WithField("document_id", id).Error("ドキュメントの削除に失敗")
		c.JSON(documentErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to delete document",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithField("document_id", id).Info("ドキュメントを削除しました")
	c.Status(http.StatusNoContent)
}

// ToggleCanonical toggles whether a document is part of the assistant's canon
func (h *DocumentHandler) ToggleCanonical(c *gin.Context) {
	id := c.Param("id")
	if err := h.library.ToggleCanonical(c.Request.Context(), id); err != nil {
		c.JSON(documentErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to toggle canonical flag",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// LinkDocument links a document to an idea card
func (h *DocumentHandler) LinkDocument(c *gin.Context) {
	var req LinkDocumentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	if err := h.library.LinkToCard(c.Request.Context(), c.Param("id"), req.CardID); err != nil {
		c.JSON(documentErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to link document",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlinkDocument unlinks a document from an idea card
func (h *DocumentHandler) UnlinkDocument(c *gin.Context) {
	var req LinkDocumentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	if err := h.library.UnlinkFromCard(c.Request.Context(), c.Param("id"), req.CardID); err != nil {
		c.JSON(documentErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to unlink document",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// documentErrorStatus maps document usecase errors to HTTP status codes.
func documentErrorStatus(err error) int {
	if errors.Is(err, usecase.ErrDocumentNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
