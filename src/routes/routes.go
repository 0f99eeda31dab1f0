package routes

import (
	"net/http"

	"ria-board/src/interface/handler"
	"ria-board/src/middleware"
	"ria-board/src/service"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the router needs.
type Handlers struct {
	Auth       *handler.AuthHandler
	Idea       *handler.IdeaHandler
	Page       *handler.PageHandler
	Document   *handler.DocumentHandler
	Todo       *handler.TodoHandler
	Hopper     *handler.HopperHandler
	Consultant *handler.ConsultantHandler
	Checklist  *handler.ChecklistHandler
	Assistant  *handler.AssistantHandler
}

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, h Handlers, authService service.AuthService) {
	// ヘルスチェック
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// パブリックルートのグループ化
	api := r.Group("/api")
	api.Use(middleware.LoggerMiddleware())
	api.Use(middleware.CORSMiddleware())
	api.Use(middleware.RateLimitMiddleware(20, 40))

	// 認証
	api.POST("/auth/login", h.Auth.Login)

	// 認証が必要なボードAPIルート
	board := api.Group("")
	board.Use(middleware.AuthMiddleware(authService))

	// アイデアカード
	ideas := board.Group("/ideas")
	{
		ideas.GET("", h.Idea.ListIdeas)               // GET /api/ideas
		ideas.POST("", h.Idea.CreateIdea)             // POST /api/ideas
		ideas.GET("/:id", h.Idea.GetIdea)             // GET /api/ideas/:id
		ideas.PUT("/:id", h.Idea.UpdateIdea)          // PUT /api/ideas/:id
		ideas.DELETE("/:id", h.Idea.DeleteIdea)       // DELETE /api/ideas/:id
		ideas.PATCH("/:id/stage", h.Idea.SetStage)    // PATCH /api/ideas/:id/stage
		ideas.PATCH("/:id/pin", h.Idea.TogglePin)     // PATCH /api/ideas/:id/pin
		ideas.PATCH("/:id/focus", h.Idea.ToggleFocus) // PATCH /api/ideas/:id/focus
	}

	// ページレジストリ
	pages := board.Group("/pages")
	{
		pages.GET("", h.Page.ListPages)              // GET /api/pages?category=A
		pages.GET("/custom", h.Page.ListCustomPages) // GET /api/pages/custom
		pages.POST("", h.Page.CreatePage)            // POST /api/pages
		pages.PUT("/reorder", h.Page.ReorderPages)   // PUT /api/pages/reorder
		pages.PUT("/:id", h.Page.UpdatePage)         // PUT /api/pages/:id
		pages.DELETE("/:id", h.Page.DeletePage)      // DELETE /api/pages/:id?policy=delete|archive
	}

	// ドキュメントライブラリ
	documents := board.Group("/documents")
	{
		documents.GET("", h.Document.ListDocuments)
		documents.GET("/tags", h.Document.ListTags)
		documents.GET("/:id", h.Document.GetDocument)
		documents.POST("", h.Document.UploadDocument)
		documents.DELETE("/:id", h.Document.DeleteDocument)
		documents.PATCH("/:id/canonical", h.Document.ToggleCanonical)
		documents.POST("/:id/link", h.Document.LinkDocument)
		documents.POST("/:id/unlink", h.Document.UnlinkDocument)
	}

	// ToDoリスト
	todos := board.Group("/todos")
	{
		todos.GET("", h.Todo.ListTodos)
		todos.POST("", h.Todo.CreateTodo)
		todos.PUT("/:id", h.Todo.UpdateTodo)
		todos.DELETE("/:id", h.Todo.DeleteTodo)
		todos.PATCH("/:id/complete", h.Todo.ToggleComplete)
	}

	// アイデアホッパー
	hopper := board.Group("/hopper")
	{
		hopper.GET("", h.Hopper.ListHopperIdeas)
		hopper.POST("", h.Hopper.CreateHopperIdea)
		hopper.PUT("/:id", h.Hopper.UpdateHopperIdea)
		hopper.DELETE("/:id", h.Hopper.DeleteHopperIdea)
	}

	// アシスタントのナレッジベースと設定
	board.GET("/canon", h.Consultant.ListCanonDocs)
	board.POST("/canon", h.Consultant.CreateCanonDoc)
	board.DELETE("/canon/:id", h.Consultant.DeleteCanonDoc)
	board.GET("/settings", h.Consultant.GetSettings)
	board.PUT("/settings", h.Consultant.SaveSettings)

	// プレローンチチェックリスト
	board.GET("/checklist", h.Checklist.GetChecklist)
	board.PUT("/checklist/items/:id", h.Checklist.SetItemStatus)

	// AIアシスタント
	ai := board.Group("/assistant")
	{
		ai.POST("/chat", h.Assistant.Chat)
		ai.POST("/analyze-board", h.Assistant.AnalyzeBoard)
		ai.POST("/analyze-document", h.Assistant.AnalyzeDocument)
		ai.POST("/transcribe", h.Assistant.Transcribe)
	}
}
