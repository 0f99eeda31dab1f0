package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"ria-board/src/domain"
	"ria-board/src/interface/handler"
	"ria-board/src/store"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageFixture struct {
	router *gin.Engine
	pages  *usecase.PageRegistry
	ideas  *usecase.IdeaStore
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	logger := newTestLogger()
	mem := store.NewMemoryStore()
	ctx := context.Background()

	ideas := usecase.NewIdeaStore(mem, logger)
	require.NoError(t, ideas.Load(ctx))
	pages := usecase.NewPageRegistry(mem, ideas, logger)
	require.NoError(t, pages.Load(ctx))

	h := handler.NewPageHandler(pages, logger)
	router := gin.New()
	group := router.Group("/api/pages")
	{
		group.GET("", h.ListPages)
		group.GET("/custom", h.ListCustomPages)
		group.POST("", h.CreatePage)
		group.PUT("/reorder", h.ReorderPages)
		group.PUT("/:id", h.UpdatePage)
		group.DELETE("/:id", h.DeletePage)
	}
	return &pageFixture{router: router, pages: pages, ideas: ideas}
}

type pageEntryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCustom    bool   `json:"isCustom"`
}

func TestPageHandler_ListPages(t *testing.T) {
	f := newPageFixture(t)

	w := performJSON(f.router, http.MethodGet, "/api/pages?category=A", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Category string         `json:"category"`
		Pages    []pageEntryDTO `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.Category)
	require.Len(t, resp.Pages, 4)
	assert.Equal(t, "Onboarding", resp.Pages[0].Name)
	assert.False(t, resp.Pages[0].IsCustom)

	// カテゴリー未指定・不正は400
	assert.Equal(t, http.StatusBadRequest, performJSON(f.router, http.MethodGet, "/api/pages", nil).Code)
	assert.Equal(t, http.StatusBadRequest, performJSON(f.router, http.MethodGet, "/api/pages?category=Z", nil).Code)
}

func TestPageHandler_ListPagesLoadFailure(t *testing.T) {
	logger := newTestLogger()
	mem := store.NewMemoryStore()
	mem.FailureHook = func(op, collection string) error {
		if op == "getAll" && collection == domain.CollectionCustomPages {
			return assert.AnError
		}
		return nil
	}
	ideas := usecase.NewIdeaStore(mem, logger)
	require.NoError(t, ideas.Load(context.Background()))
	pages := usecase.NewPageRegistry(mem, ideas, logger)
	require.Error(t, pages.Load(context.Background()))

	h := handler.NewPageHandler(pages, logger)
	router := gin.New()
	router.GET("/api/pages", h.ListPages)

	// ロード失敗中はリトライ可能な503を返す
	w := performJSON(router, http.MethodGet, "/api/pages?category=A", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var errResp handler.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.True(t, errResp.Retryable)

	// 復旧後は読み取り時に再ロードされる
	mem.FailureHook = nil
	w = performJSON(router, http.MethodGet, "/api/pages?category=A", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, pages.Loaded())
}

func TestPageHandler_CreatePage(t *testing.T) {
	f := newPageFixture(t)

	w := performJSON(f.router, http.MethodPost, "/api/pages", handler.CreatePageRequestDTO{
		Category:    "C",
		Name:        "Webinars",
		Description: "Monthly topics",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var page domain.CustomPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "Webinars", page.Name)

	// カスタムページ一覧に現れる
	w = performJSON(f.router, http.MethodGet, "/api/pages/custom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		CustomPages []domain.CustomPage `json:"customPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.CustomPages, 1)
}

func TestPageHandler_CreatePageConflict(t *testing.T) {
	f := newPageFixture(t)

	w := performJSON(f.router, http.MethodPost, "/api/pages", handler.CreatePageRequestDTO{
		Category: "A",
		Name:     "onboarding", // 大文字小文字を無視して既定ページと衝突
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPageHandler_UpdatePage(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	page, err := f.pages.AddPage(ctx, domain.CategoryClientExperience, "Referrals", "")
	require.NoError(t, err)

	w := performJSON(f.router, http.MethodPut, "/api/pages/"+page.ID, handler.UpdatePageRequestDTO{
		Name: "Introductions",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := f.pages.PageByID(page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Introductions", got.Name)

	// 不明なIDは404
	w = performJSON(f.router, http.MethodPut, "/api/pages/missing", handler.UpdatePageRequestDTO{Name: "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPageHandler_DeletePage(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	page, err := f.pages.AddPage(ctx, domain.CategoryClientExperience, "Referrals", "")
	require.NoError(t, err)
	orphan, err := f.ideas.Add(ctx, usecase.AddIdeaRequest{
		Text:        "keep as archive",
		Category:    domain.CategoryClientExperience,
		Subcategory: "Referrals",
	})
	require.NoError(t, err)

	w := performJSON(f.router, http.MethodDelete, "/api/pages/"+page.ID+"?policy=archive", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := f.ideas.IdeaByID(orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageArchived, got.Stage)

	// 不正なポリシーは400
	w = performJSON(f.router, http.MethodDelete, "/api/pages/any?policy=purge", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPageHandler_ReorderPages(t *testing.T) {
	f := newPageFixture(t)

	w := performJSON(f.router, http.MethodPut, "/api/pages/reorder", handler.ReorderPagesRequestDTO{
		Category: "A",
		Names:    []string{"Year 1", "Onboarding", "First Meeting", "Portal Design"},
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []string{"Year 1", "Onboarding", "First Meeting", "Portal Design"},
		f.pages.PagesForCategory(domain.CategoryClientExperience))

	// 空の並びはバインドで弾かれる
	w = performJSON(f.router, http.MethodPut, "/api/pages/reorder", map[string]interface{}{
		"category": "A",
		"names":    []string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
