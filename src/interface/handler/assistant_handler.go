package handler

import (
	"net/http"

	"ria-board/src/assistant"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AssistantHandler handles HTTP requests for the AI assistant
type AssistantHandler struct {
	bridge      *assistant.Bridge
	transcriber *assistant.Transcriber
	logger      *logrus.Logger
}

// NewAssistantHandler creates a new assistant handler. transcriber may be nil
// when speech-to-text is not configured.
func NewAssistantHandler(bridge *assistant.Bridge, transcriber *assistant.Transcriber, logger *logrus.Logger) *AssistantHandler {
	return &AssistantHandler{bridge: bridge, transcriber: transcriber, logger: logger}
}

// Chat runs one assistant chat turn
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	result, err := h.bridge.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.logger.WithError(err).Error("アシスタントとの通信に失敗")
		c.JSON(http.StatusBadGateway, ErrorResponseDTO{
			Error:   "Assistant request failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeBoard asks the assistant for a gap analysis of the board
func (h *AssistantHandler) AnalyzeBoard(c *gin.Context) {
	reply, err := h.bridge.AnalyzeBoard(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ボード分析に失敗")
		c.JSON(http.StatusBadGateway, ErrorResponseDTO{
			Error:   "Board analysis failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// AnalyzeDocument asks the assistant to suggest metadata for a document
func (h *AssistantHandler) AnalyzeDocument(c *gin.Context) {
	var req assistant.AnalyzeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	suggestions, err := h.bridge.AnalyzeDocument(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("filename", req.Filename).Error("ドキュメント分析に失敗")
		c.JSON(http.StatusBadGateway, ErrorResponseDTO{
			Error:   "Document analysis failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// Transcribe proxies an audio upload to the speech-to-text API
func (h *AssistantHandler) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponseDTO{
			Error: "Transcription is not configured",
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
		h.logger.WithError(err).Error("音声ファイルのオープンに失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{
			Error: "Failed to read file",
		})
		return
	}
	defer file.Close()

	text, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.logger.WithError(err).WithField("filename", fileHeader.Filename).Error("文字起こしに失敗")
		c.JSON(http.StatusBadGateway, ErrorResponseDTO{
			Error:   "Transcription failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
