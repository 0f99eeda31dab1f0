package handler

import (
	"errors"
	"net/http"

	"ria-board/src/domain"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TodoHandler handles HTTP requests for to-do operations
type TodoHandler struct {
	todos  *usecase.TodoStore
	logger *logrus.Logger
}

// NewTodoHandler creates a new to-do handler
func NewTodoHandler(todos *usecase.TodoStore, logger *logrus.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

// ListTodos retrieves all to-dos in display order
func (h *TodoHandler) ListTodos(c *gin.Context) {
	if !ensureLoaded(c, h.todos) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"todos": h.todos.Todos()})
}

// CreateTodo creates a new to-do
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req CreateTodoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	todo, err := h.todos.Add(c.Request.Context(), usecase.AddTodoRequest{
		Text:        req.Text,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     req.DueDate,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logger.WithError(err).Error("ToDoの作成に失敗")
		c.JSON(todoErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to create todo",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo applies a partial update to a to-do
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	var req UpdateTodoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	update := usecase.UpdateTodoRequest{
		Text:        req.Text,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		update.Priority = &priority
	}

	id := c.Param("id")
	if err := h.todos.Update(c.Request.Context(), id, update); err != nil {
		h.logger.WithError(err).WithField("todo_id", id).Error("ToDoの更新に失敗")
		c.JSON(todoErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to update todo",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteTodo removes a to-do
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id := c.Param("id")
	if err := h.todos.Remove(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).WithField("todo_id", id).Error("ToDoの削除に失敗")
		c.JSON(todoErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to delete todo",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleComplete toggles a to-do's completed flag
func (h *TodoHandler) ToggleComplete(c *gin.Context) {
	id := c.Param("id")
	if err := h.todos.ToggleComplete(c.Request.Context(), id); err != nil {
		c.JSON(todoErrorStatus(err), ErrorResponseDTO{
			Error:   "Failed to toggle completion",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// todoErrorStatus maps to-do usecase errors to HTTP status codes.
func todoErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrTodoTextEmpty), errors.Is(err, usecase.ErrInvalidPriority):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
