package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"ria-board/src/domain"
	"ria-board/src/usecase"
)

// fencedJSONPattern matches a ```json fenced block in assistant output.
var fencedJSONPattern = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Bridge connects the LLM client to the board state.
type Bridge struct {
	client     Client
	ideas      *usecase.IdeaStore
	pages      *usecase.PageRegistry
	consultant *usecase.ConsultantStore
	documents  *usecase.DocumentLibrary
}

// NewBridge creates an assistant bridge over the board stores.
func NewBridge(client Client, ideas *usecase.IdeaStore, pages *usecase.PageRegistry, consultant *usecase.ConsultantStore, documents *usecase.DocumentLibrary) *Bridge {
	return &Bridge{
		client:     client,
		ideas:      ideas,
		pages:      pages,
		consultant: consultant,
		documents:  documents,
	}
}

// ChatResult represents the outcome of one chat turn
type ChatResult struct {
	Reply        string        `json:"reply"`
	CreatedIdeas []domain.Idea `json:"createdIdeas"`
}

// cardAction is the side-effect payload the assistant may embed in a reply.
type cardAction struct {
	Action   string `json:"action"`
	Category string `json:"category"`
	Page     string `json:"page"`
	Text     string `json:"text"`
	Type     string `json:"type"`
}

// Chat runs one chat turn: board snapshot and consultant context go into the
// prompt, and any create_card actions in the reply are validated and applied.
func (b *Bridge) Chat(ctx context.Context, message string) (*ChatResult, error) {
	prompt := b.buildChatPrompt(message)

	reply, err := b.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	created := b.applyCardActions(ctx, reply)
	reply = stripActionBlocks(reply)

	return &ChatResult{Reply: reply, CreatedIdeas: created}, nil
}

// AnalyzeBoard asks the assistant for a gap analysis of the current board.
func (b *Bridge) AnalyzeBoard(ctx context.Context) (string, error) {
	task := "Analyze my current board. What key areas am I missing for a launch? Are there any contradictions in my tech stack choices?"
	prompt := fmt.Sprintf("Context: %s\n\nTask: %s", b.boardContext(), task)
	return b.client.Complete(ctx, prompt)
}

func (b *Bridge) buildChatPrompt(message string) string {
	settings := b.consultant.Settings()

	var sb strings.Builder
	sb.WriteString("You are an expert consultant specializing in building Registered Investment Advisor (RIA) firms.\n")
	sb.WriteString("You have deep knowledge of SEC compliance, wealth management technology (Wealthbox, Redtail, Orion, etc.), marketing for financial advisors, and operational best practices.\n\n")

	sb.WriteString("About the user:\n")
	sb.WriteString(settings.UserContext)
	sb.WriteString("\n\nProject constraints:\n")
	sb.WriteString(settings.ProjectConstraints)
	sb.WriteString("\n")

	canon := b.consultant.CanonDocs()
	if len(canon) > 0 {
		sb.WriteString("\nReference documents:\n")
		for _, doc := range canon {
			sb.WriteString(fmt.Sprintf("## %s\n%s\n", doc.Title, doc.Content))
		}
	}

	sb.WriteString("\nCurrent Board State:\n")
	sb.WriteString(b.boardContext())

	sb.WriteString("\n\nUser Query: ")
	sb.WriteString(message)

	sb.WriteString("\n\nProvide concise, actionable advice. If the user asks about the board, refer to the Current Board State.\n")
	sb.WriteString("If the user asks you to add a card to the board, include a fenced JSON block shaped like\n")
	sb.WriteString("```json\n{\"action\": \"create_card\", \"category\": \"A\", \"page\": \"Page Name\", \"text\": \"Card text\", \"type\": \"idea\"}\n```\n")
	sb.WriteString("after your reply, one block per card. Category must be one of A, B, C, D and type one of idea, question.")

	return sb.String()
}

// boardContext renders the idea list as prompt context lines.
func (b *Bridge) boardContext() string {
	ideas := b.ideas.Ideas()
	if len(ideas) == 0 {
		return "(the board is empty)"
	}

	lines := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		refined := ""
		if idea.Refined {
			refined = " (Refined)"
		}
		lines = append(lines, fmt.Sprintf("- [%s/%s] (%s): %s%s", idea.Category, idea.Subcategory, idea.Type, idea.Text, refined))
	}
	return strings.Join(lines, "\n")
}

// applyCardActions parses create_card blocks from the reply and adds the
// cards. A bad block is logged and skipped, never failing the chat turn.
func (b *Bridge) applyCardActions(ctx context.Context, reply string) []domain.Idea {
	var created []domain.Idea

	for _, match := range fencedJSONPattern.FindAllStringSubmatch(reply, -1) {
		var action cardAction
		if err := json.Unmarshal([]byte(match[1]), &action); err != nil {
			logrus.WithError(err).Warn("アシスタントのアクションブロックの解析に失敗しました")
			continue
		}
		if action.Action != "create_card" || strings.TrimSpace(action.Text) == "" {
			continue
		}

		category := domain.Category(action.Category)
		if !category.IsValid() {
			logrus.WithField("category", action.Category).Warn("アシスタントが無効なカテゴリーを指定しました")
			continue
		}

		page := b.resolvePage(category, action.Page)
		ideaType := domain.IdeaType(action.Type)
		if !ideaType.IsValid() {
			ideaType = domain.IdeaTypeIdea
		}

		idea, err := b.ideas.Add(ctx, usecase.AddIdeaRequest{
			Text:        action.Text,
			Category:    category,
			Subcategory: page,
			Type:        ideaType,
		})
		if err != nil {
			logrus.WithError(err).Warn("アシスタントによるカード作成に失敗しました")
			continue
		}
		created = append(created, *idea)
	}
	return created
}

// resolvePage checks the suggested page name against the registry and falls
// back to the category's first page when the name is unknown.
func (b *Bridge) resolvePage(category domain.Category, suggested string) string {
	known := b.pages.PagesForCategory(category)
	for _, name := range known {
		if strings.EqualFold(name, strings.TrimSpace(suggested)) {
			return name
		}
	}
	if len(known) > 0 {
		return known[0]
	}
	return suggested
}

func stripActionBlocks(reply string) string {
	cleaned := reply
	for _, match := range fencedJSONPattern.FindAllStringSubmatch(reply, -1) {
		var action cardAction
		if err := json.Unmarshal([]byte(match[1]), &action); err != nil {
			continue
		}
		if action.Action == "create_card" {
			cleaned = strings.Replace(cleaned, match[0], "", 1)
		}
	}
	return strings.TrimSpace(cleaned)
}

// DocumentSuggestions represents assistant-suggested metadata for a document
type DocumentSuggestions struct {
	SuggestedPage    string   `json:"suggestedPage"`
	SuggestedSection string   `json:"suggestedSection"`
	SuggestedTags    []string `json:"suggestedTags"`
	Summary          string   `json:"summary"`
	RelatedTo        []string `json:"relatedTo"`
}

// AnalyzeDocumentRequest represents a document-analysis request
type AnalyzeDocumentRequest struct {
	Text     string `json:"text" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// AnalyzeDocument asks the assistant to suggest metadata for a document. The
// reply must be a JSON object, optionally fenced.
func (b *Bridge) AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) (*DocumentSuggestions, error) {
	existingTags := strings.Join(b.documents.RecentTags(0), ", ")
	if existingTags == "" {
		existingTags = "none"
	}
	var names []string
	for _, doc := range b.documents.Documents("") {
		names = append(names, doc.Filename)
	}
	existingDocs := strings.Join(names, ", ")
	if existingDocs == "" {
		existingDocs = "none"
	}

	prompt := fmt.Sprintf(`You are an assistant for an RIA practice-building board. Analyze the document content and suggest metadata.

Document filename: %s
Existing tags: %s
Existing documents: %s

Return ONLY a JSON object with this shape:
{
  "suggestedPage": "string",
  "suggestedSection": "string",
  "suggestedTags": ["string"],
  "summary": "string",
  "relatedTo": ["string"]
}

Rules:
- Suggest the most relevant page and section in the app.
- Suggest 2-4 relevant tags, preferring existing tags when appropriate.
- Summary should be 1-2 sentences.
- relatedTo should list the most relevant existing document names (or empty array).

Document text:
%s`, req.Filename, existingTags, existingDocs, req.Text)

	reply, err := b.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload := extractJSONPayload(reply)

	var suggestions DocumentSuggestions
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse document suggestions: %w", err)
	}
	if suggestions.SuggestedTags == nil {
		suggestions.SuggestedTags = []string{}
	}
	if suggestions.RelatedTo == nil {
		suggestions.RelatedTo = []string{}
	}
	return &suggestions, nil
}

// extractJSONPayload unwraps a fenced code block if present.
func extractJSONPayload(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if match := fencedJSONPattern.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1])
	}
	return trimmed
}
