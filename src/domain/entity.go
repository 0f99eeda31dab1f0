package domain

// Stage represents an idea's position in the workflow
type Stage string

const (
	StageCurrentBest  Stage = "current_best"
	StageWorkshopping Stage = "workshopping"
	StageReadyToGo    Stage = "ready_to_go"
	StageArchived     Stage = "archived"
)

// IdeaType represents the kind of card on the board
type IdeaType string

const (
	IdeaTypeIdea     IdeaType = "idea"
	IdeaTypeQuestion IdeaType = "question"
)

// Note represents a single note entry attached to an idea
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Idea represents a single board card
type Idea struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
	Timestamp   int64    `json:"timestamp"`
	Refined     bool     `json:"refined"`
	Stage       Stage    `json:"stage"`
	Pinned      bool     `json:"pinned"`
	Focused     bool     `json:"focused"`
	Type        IdeaType `json:"type"`
	Goal        string   `json:"goal"`
	Images      []string `json:"images"`
	Notes       []Note   `json:"notes"`
	LinkedDocs  []string `json:"linkedDocs"`
}

// IsValid validates if the stage is valid
func (s Stage) IsValid() bool {
	switch s {
	case StageCurrentBest, StageWorkshopping, StageReadyToGo, StageArchived:
		return true
	default:
		return false
	}
}

// String returns string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// IsValid validates if the idea type is valid
func (t IdeaType) IsValid() bool {
	switch t {
	case IdeaTypeIdea, IdeaTypeQuestion:
		return true
	default:
		return false
	}
}
