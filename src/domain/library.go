package domain

// Priority represents todo and hopper priority levels
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid validates if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DocumentMeta represents metadata for an uploaded library document
type DocumentMeta struct {
	ID          string   `json:"id"`
	Filename    string   `json:"filename"`
	FileType    string   `json:"fileType"`
	Size        int64    `json:"size"`
	UploadedAt  int64    `json:"uploadedAt"`
	StorageURL  string   `json:"storageUrl"`
	LinkedCards []string `json:"linkedCards"`
	IsCanonical bool     `json:"isCanonical"`
	Page        string   `json:"page,omitempty"`
	Section     string   `json:"section,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// TodoItem represents a single to-do entry
type TodoItem struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority"`
	DueDate     int64    `json:"dueDate,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
}

// HopperStatus represents the lifecycle of a quick-captured idea
type HopperStatus string

const (
	HopperNew         HopperStatus = "new"
	HopperExploring   HopperStatus = "exploring"
	HopperDeveloping  HopperStatus = "developing"
	HopperImplemented HopperStatus = "implemented"
	HopperParked      HopperStatus = "parked"
)

// IsValid validates if the hopper status is valid
func (s HopperStatus) IsValid() bool {
	switch s {
	case HopperNew, HopperExploring, HopperDeveloping, HopperImplemented, HopperParked:
		return true
	default:
		return false
	}
}

// HopperIdea represents a quick-captured idea waiting for triage
type HopperIdea struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ReferenceURL  string       `json:"referenceUrl,omitempty"` // 旧形式、読み込み時にReferenceURLsへ移行
	ReferenceURLs []string     `json:"referenceUrls"`
	CreatedAt     int64        `json:"createdAt"`
	UpdatedAt     int64        `json:"updatedAt"`
	Status        HopperStatus `json:"status"`
	Priority      Priority     `json:"priority"`
	Tags          []string     `json:"tags"`
	Notes         string       `json:"notes"`
}

// CanonDoc represents a knowledge-base document fed to the assistant
type CanonDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// ConsultantSettings represents the user-editable assistant constraints
type ConsultantSettings struct {
	UserContext        string `json:"userContext"`
	ProjectConstraints string `json:"projectConstraints"`
	UpdatedAt          int64  `json:"updatedAt"`
}

// ChecklistStatus represents the tri-state progress of a checklist item
type ChecklistStatus string

const (
	ChecklistNotStarted ChecklistStatus = "not_started"
	ChecklistInProgress ChecklistStatus = "in_progress"
	ChecklistComplete   ChecklistStatus = "complete"
)

// IsValid validates if the checklist status is valid
func (s ChecklistStatus) IsValid() bool {
	switch s {
	case ChecklistNotStarted, ChecklistInProgress, ChecklistComplete:
		return true
	default:
		return false
	}
}

// ChecklistItem represents a single pre-launch checklist entry
type ChecklistItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Timeframe    string `json:"timeframe"`
	Dependencies string `json:"dependencies,omitempty"`
	Details      string `json:"details,omitempty"`
}

// ChecklistPage represents a themed group of checklist items
type ChecklistPage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Items       []ChecklistItem `json:"items"`
}

// ChecklistItemState represents the persisted status of one checklist item
type ChecklistItemState struct {
	ItemID    string          `json:"itemId"`
	Status    ChecklistStatus `json:"status"`
	UpdatedAt int64           `json:"updatedAt"`
}
