package domain

// Bounds for user-supplied page fields.
const (
	PageNameMaxLen        = 50
	PageDescriptionMaxLen = 200
)

// CustomPage represents a user-created page within a category
type CustomPage struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt,omitempty"`
}

// PageOrder represents the persisted display order of a category's pages
type PageOrder struct {
	Category Category `json:"category"`
	Names    []string `json:"names"`
}

// OrphanPolicy controls what happens to items still assigned to a deleted page
type OrphanPolicy string

const (
	OrphanDelete  OrphanPolicy = "delete"
	OrphanArchive OrphanPolicy = "archive"
)

// IsValid validates if the orphan policy is valid
func (p OrphanPolicy) IsValid() bool {
	return p == OrphanDelete || p == OrphanArchive
}
