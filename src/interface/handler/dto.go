package handler

import "ria-board/src/domain"

// CreateIdeaRequestDTO represents HTTP request for creating an idea card
type CreateIdeaRequestDTO struct {
	Text        string        `json:"text" binding:"required,min=1"`
	Category    string        `json:"category" binding:"required,board_category"`
	Subcategory string        `json:"subcategory" binding:"required,max=50"`
	Type        string        `json:"type" binding:"omitempty,idea_type"`
	Stage       string        `json:"stage" binding:"omitempty,idea_stage"`
	Goal        string        `json:"goal"`
	Images      []string      `json:"images"`
	Notes       []domain.Note `json:"notes"`
	LinkedDocs  []string      `json:"linkedDocs"`
}

// UpdateIdeaRequestDTO represents HTTP request for a partial idea update
type UpdateIdeaRequestDTO struct {
	Text        *string        `json:"text,omitempty" binding:"omitempty,min=1"`
	Subcategory *string        `json:"subcategory,omitempty" binding:"omitempty,max=50"`
	Refined     *bool          `json:"refined,omitempty"`
	Stage       *string        `json:"stage,omitempty" binding:"omitempty,idea_stage"`
	Pinned      *bool          `json:"pinned,omitempty"`
	Type        *string        `json:"type,omitempty" binding:"omitempty,idea_type"`
	Goal        *string        `json:"goal,omitempty"`
	Images      *[]string      `json:"images,omitempty"`
	Notes       *[]domain.Note `json:"notes,omitempty"`
	LinkedDocs  *[]string      `json:"linkedDocs,omitempty"`
}

// SetStageRequestDTO represents HTTP request for moving an idea between stages
type SetStageRequestDTO struct {
	Stage string `json:"stage" binding:"required,idea_stage"`
}

// ToggleFocusRequestDTO represents HTTP request for toggling workshop focus
type ToggleFocusRequestDTO struct {
	Category    string `json:"category" binding:"required,board_category"`
	Subcategory string `json:"subcategory" binding:"required"`
}

// CreatePageRequestDTO represents HTTP request for creating a custom page
type CreatePageRequestDTO struct {
	Category    string `json:"category" binding:"required,board_category"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdatePageRequestDTO represents HTTP request for renaming a custom page
type UpdatePageRequestDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ReorderPagesRequestDTO represents HTTP request for reordering a category's pages
type ReorderPagesRequestDTO struct {
	Category string   `json:"category" binding:"required,board_category"`
	Names    []string `json:"names" binding:"required,min=1"`
}

// CreateTodoRequestDTO represents HTTP request for creating a to-do
type CreateTodoRequestDTO struct {
	Text        string   `json:"text" binding:"required,min=1"`
	Description string   `json:"description"`
	Priority    string   `json:"priority" binding:"omitempty,todo_priority"`
	DueDate     int64    `json:"dueDate"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// UpdateTodoRequestDTO represents HTTP request for a partial to-do update
type UpdateTodoRequestDTO struct {
	Text        *string   `json:"text,omitempty" binding:"omitempty,min=1"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Priority    *string   `json:"priority,omitempty" binding:"omitempty,todo_priority"`
	DueDate     *int64    `json:"dueDate,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// CreateHopperRequestDTO represents HTTP request for capturing a hopper idea
type CreateHopperRequestDTO struct {
	Title         string   `json:"title" binding:"required,min=1"`
	Description   string   `json:"description"`
	ReferenceURLs []string `json:"referenceUrls"`
	Priority      string   `json:"priority" binding:"omitempty,todo_priority"`
	Tags          []string `json:"tags"`
	Notes         string   `json:"notes"`
}

// UpdateHopperRequestDTO represents HTTP request for a partial hopper update
type UpdateHopperRequestDTO struct {
	Title         *string   `json:"title,omitempty" binding:"omitempty,min=1"`
	Description   *string   `json:"description,omitempty"`
	ReferenceURLs *[]string `json:"referenceUrls,omitempty"`
	Status        *string   `json:"status,omitempty" binding:"omitempty,hopper_status"`
	Priority      *string   `json:"priority,omitempty" binding:"omitempty,todo_priority"`
	Tags          *[]string `json:"tags,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

// CreateCanonDocRequestDTO represents HTTP request for adding a knowledge-base document
type CreateCanonDocRequestDTO struct {
	Title   string `json:"title" binding:"required,min=1"`
	Content string `json:"content" binding:"required"`
}

// SaveSettingsRequestDTO represents HTTP request for saving assistant settings
type SaveSettingsRequestDTO struct {
	UserContext        string `json:"userContext" binding:"required"`
	ProjectConstraints string `json:"projectConstraints" binding:"required"`
}

// SetChecklistStatusRequestDTO represents HTTP request for setting a checklist item status
type SetChecklistStatusRequestDTO struct {
	Status string `json:"status" binding:"required,checklist_status"`
}

// ChatRequestDTO represents HTTP request for one assistant chat turn
type ChatRequestDTO struct {
	Message string `json:"message" binding:"required,min=1"`
}

// LinkDocumentRequestDTO represents HTTP request for linking a document to a card
type LinkDocumentRequestDTO struct {
	CardID string `json:"cardId" binding:"required"`
}

// LoginRequestDTO represents HTTP request for logging in
type LoginRequestDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponseDTO represents HTTP response for a successful login
type LoginResponseDTO struct {
	Token string `json:"token"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
