package domain

// Category represents a fixed top-level grouping of board pages
type Category string

const (
	CategoryClientExperience Category = "A"
	CategoryOperationsTech   Category = "B"
	CategoryMarketingGrowth  Category = "C"
	CategoryLogicCompliance  Category = "D"
)

// DefaultPage represents a built-in page of a category
type DefaultPage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryInfo represents the display metadata and default pages of a category
type CategoryInfo struct {
	Emoji string        `json:"emoji"`
	Label string        `json:"label"`
	Pages []DefaultPage `json:"pages"`
}

// CategoryStructure defines the fixed category set and their default pages.
// 各カテゴリのデフォルトページはコンパイル時に固定
var CategoryStructure = map[Category]CategoryInfo{
	CategoryClientExperience: {
		Emoji: "✨",
		Label: "Client Experience",
		Pages: []DefaultPage{
			{Name: "Onboarding", Description: "New client intake and account opening flow"},
			{Name: "First Meeting", Description: "Discovery meeting scripts and agendas"},
			{Name: "Year 1", Description: "First-year client touchpoints and deliverables"},
			{Name: "Portal Design", Description: "Client portal layout and content"},
		},
	},
	CategoryOperationsTech: {
		Emoji: "⚙️",
		Label: "Operations & Tech",
		Pages: []DefaultPage{
			{Name: "Wealthbox", Description: "CRM configuration and workflows"},
			{Name: "RightCapital", Description: "Planning software setup"},
			{Name: "Automation", Description: "Workflow automation between tools"},
			{Name: "Data Flows", Description: "How data moves between systems"},
		},
	},
	CategoryMarketingGrowth: {
		Emoji: "🚀",
		Label: "Marketing & Growth",
		Pages: []DefaultPage{
			{Name: "Landing Page", Description: "Website landing page copy and structure"},
			{Name: "Postcards", Description: "Direct mail campaigns"},
			{Name: "Fee Calculator", Description: "Interactive fee comparison tool"},
			{Name: "Messaging", Description: "Positioning and value proposition"},
		},
	},
	CategoryLogicCompliance: {
		Emoji: "🧠",
		Label: "Logic & Compliance",
		Pages: []DefaultPage{
			{Name: "Asset Allocation", Description: "Portfolio construction logic"},
			{Name: "Models", Description: "Model portfolios and rebalancing rules"},
			{Name: "ADV Filings", Description: "Form ADV preparation and filings"},
			{Name: "Policies", Description: "Compliance policies and procedures"},
		},
	},
}

// Categories returns all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryClientExperience,
		CategoryOperationsTech,
		CategoryMarketingGrowth,
		CategoryLogicCompliance,
	}
}

// IsValid validates if the category is valid
func (c Category) IsValid() bool {
	_, ok := CategoryStructure[c]
	return ok
}

// String returns string representation of Category
func (c Category) String() string {
	return string(c)
}

// DefaultPages returns the default page set of the category in declared order.
func (c Category) DefaultPages() []DefaultPage {
	info, ok := CategoryStructure[c]
	if !ok {
		return nil
	}
	return info.Pages
}
