package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ria-board/src/domain"
	"ria-board/src/interface/handler"
	"ria-board/src/store"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type ideaFixture struct {
	router *gin.Engine
	ideas  *usecase.IdeaStore
	mem    *store.MemoryStore
}

func newIdeaFixture(t *testing.T) *ideaFixture {
	t.Helper()
	logger := newTestLogger()
	mem := store.NewMemoryStore()
	ideas := usecase.NewIdeaStore(mem, logger)
	require.NoError(t, ideas.Load(context.Background()))

	h := handler.NewIdeaHandler(ideas, logger)
	router := gin.New()
	group := router.Group("/api/ideas")
	{
		group.GET("", h.ListIdeas)
		group.POST("", h.CreateIdea)
		group.GET("/:id", h.GetIdea)
		group.PUT("/:id", h.UpdateIdea)
		group.DELETE("/:id", h.DeleteIdea)
		group.PATCH("/:id/stage", h.SetStage)
		group.PATCH("/:id/pin", h.TogglePin)
		group.PATCH("/:id/focus", h.ToggleFocus)
	}
	return &ideaFixture{router: router, ideas: ideas, mem: mem}
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdeaHandler_ListIdeas(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodGet, "/api/ideas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ideas []domain.Idea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Ideas, 2)
}

func TestIdeaHandler_ListIdeasFiltered(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodGet, "/api/ideas?category=A&page=Onboarding", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ideas []domain.Idea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Ideas, 2)

	w = performJSON(f.router, http.MethodGet, "/api/ideas?category=B&page=Wealthbox", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Ideas)

	w = performJSON(f.router, http.MethodGet, "/api/ideas?category=Z&page=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdeaHandler_ListIdeasByCategoryOnly(t *testing.T) {
	f := newIdeaFixture(t)

	_, err := f.ideas.Add(context.Background(), usecase.AddIdeaRequest{
		Text:        "custodian shortlist",
		Category:    domain.CategoryOperationsTech,
		Subcategory: "Wealthbox",
	})
	require.NoError(t, err)

	// ページ指定なしでもカテゴリーで絞り込まれる
	w := performJSON(f.router, http.MethodGet, "/api/ideas?category=B", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ideas []domain.Idea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 1)
	assert.Equal(t, domain.CategoryOperationsTech, resp.Ideas[0].Category)

	w = performJSON(f.router, http.MethodGet, "/api/ideas?category=Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdeaHandler_ListIdeasLoadFailure(t *testing.T) {
	logger := newTestLogger()
	mem := store.NewMemoryStore()
	mem.FailureHook = func(op, collection string) error {
		if op == "getAll" && collection == domain.CollectionIdeas {
			return fmt.Errorf("remote store unavailable")
		}
		return nil
	}
	ideas := usecase.NewIdeaStore(mem, logger)
	require.Error(t, ideas.Load(context.Background()))

	h := handler.NewIdeaHandler(ideas, logger)
	router := gin.New()
	router.GET("/api/ideas", h.ListIdeas)

	// ロード失敗中は空のキャッシュを返さずリトライ可能な503を返す
	w := performJSON(router, http.MethodGet, "/api/ideas", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var errResp handler.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.True(t, errResp.Retryable)

	// ストアが復旧すると読み取り時に再ロードされる
	mem.FailureHook = nil
	w = performJSON(router, http.MethodGet, "/api/ideas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ideas []domain.Idea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Ideas, 2)
	assert.True(t, ideas.Loaded())
}

func TestIdeaHandler_CreateIdea(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodPost, "/api/ideas", handler.CreateIdeaRequestDTO{
		Text:        "Automate RMD reminders",
		Category:    "B",
		Subcategory: "Automation",
		Type:        "idea",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Idea
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StageWorkshopping, created.Stage)

	assert.Len(t, f.ideas.Ideas(), 3)
}

func TestIdeaHandler_CreateIdeaValidation(t *testing.T) {
	f := newIdeaFixture(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "本文なし", body: map[string]string{"category": "A", "subcategory": "Onboarding"}},
		{name: "カテゴリーなし", body: map[string]string{"text": "x", "subcategory": "Onboarding"}},
		{name: "不正なカテゴリー", body: map[string]string{"text": "x", "category": "Z", "subcategory": "Onboarding"}},
		{name: "不正なタイプ", body: map[string]string{"text": "x", "category": "A", "subcategory": "Onboarding", "type": "task"}},
		{name: "不正なステージ", body: map[string]string{"text": "x", "category": "A", "subcategory": "Onboarding", "stage": "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(f.router, http.MethodPost, "/api/ideas", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIdeaHandler_GetIdea(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodGet, "/api/ideas/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var idea domain.Idea
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &idea))
	assert.Equal(t, "1", idea.ID)

	w = performJSON(f.router, http.MethodGet, "/api/ideas/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIdeaHandler_UpdateIdea(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodPut, "/api/ideas/1", map[string]interface{}{
		"text":    "sharper wording",
		"refined": true,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := f.ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.Equal(t, "sharper wording", got.Text)
	assert.True(t, got.Refined)
}

func TestIdeaHandler_SetStage(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodPatch, "/api/ideas/1/stage", handler.SetStageRequestDTO{Stage: "ready_to_go"})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := f.ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageReadyToGo, got.Stage)

	w = performJSON(f.router, http.MethodPatch, "/api/ideas/1/stage", map[string]string{"stage": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdeaHandler_TogglePinAndFocus(t *testing.T) {
	f := newIdeaFixture(t)

	require.Equal(t, http.StatusNoContent,
		performJSON(f.router, http.MethodPatch, "/api/ideas/1/stage", handler.SetStageRequestDTO{Stage: "current_best"}).Code)
	require.Equal(t, http.StatusNoContent,
		performJSON(f.router, http.MethodPatch, "/api/ideas/1/pin", nil).Code)

	got, err := f.ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.True(t, got.Pinned)

	w := performJSON(f.router, http.MethodPatch, "/api/ideas/2/focus", handler.ToggleFocusRequestDTO{
		Category:    "A",
		Subcategory: "Onboarding",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err = f.ideas.IdeaByID("2")
	require.NoError(t, err)
	assert.True(t, got.Focused)
}

func TestIdeaHandler_DeleteIdea(t *testing.T) {
	f := newIdeaFixture(t)

	w := performJSON(f.router, http.MethodDelete, "/api/ideas/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, f.ideas.Ideas(), 1)

	// 冪等
	w = performJSON(f.router, http.MethodDelete, "/api/ideas/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIdeaHandler_CreateIdeaStoreFailure(t *testing.T) {
	f := newIdeaFixture(t)
	f.mem.FailureHook = func(op, collection string) error {
		if op == "set" && collection == domain.CollectionIdeas {
			return fmt.Errorf("remote store unavailable")
		}
		return nil
	}

	w := performJSON(f.router, http.MethodPost, "/api/ideas", handler.CreateIdeaRequestDTO{
		Text:        "doomed",
		Category:    "A",
		Subcategory: "Onboarding",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
