package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"ria-board/src/domain"
	"ria-board/src/store"
	"ria-board/src/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote store unavailable")

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// failOn returns a failure hook that rejects the given store operation on the
// given collection.
func failOn(op, collection string) func(string, string) error {
	return func(gotOp, gotCollection string) error {
		if gotOp == op && gotCollection == collection {
			return errRemote
		}
		return nil
	}
}

func newLoadedIdeaStore(t *testing.T) (*usecase.IdeaStore, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	ideas := usecase.NewIdeaStore(mem, newTestLogger())
	require.NoError(t, ideas.Load(context.Background()))
	return ideas, mem
}

func addIdea(t *testing.T, ideas *usecase.IdeaStore, req usecase.AddIdeaRequest) *domain.Idea {
	t.Helper()
	idea, err := ideas.Add(context.Background(), req)
	require.NoError(t, err)
	return idea
}

func TestIdeaStore_LoadSeedsEmptyStore(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)

	assert.True(t, ideas.Loaded())
	assert.Len(t, ideas.Ideas(), 2)

	// 初期データはストアにも書き込まれる
	records, err := mem.GetAll(context.Background(), domain.CollectionIdeas)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestIdeaStore_LoadExistingDataDoesNotSeed(t *testing.T) {
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Set(context.Background(), domain.CollectionIdeas, "x1",
		[]byte(`{"text":"existing","category":"B","subcategory":"Wealthbox","stage":"workshopping","type":"idea"}`)))

	ideas := usecase.NewIdeaStore(mem, newTestLogger())
	require.NoError(t, ideas.Load(context.Background()))

	got := ideas.Ideas()
	require.Len(t, got, 1)
	assert.Equal(t, "x1", got[0].ID)
	assert.Equal(t, "existing", got[0].Text)
}

func TestIdeaStore_LoadFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailureHook = failOn("getAll", domain.CollectionIdeas)

	ideas := usecase.NewIdeaStore(mem, newTestLogger())
	err := ideas.Load(context.Background())

	assert.ErrorIs(t, err, usecase.ErrLoadFailed)
	assert.False(t, ideas.Loaded())
	assert.Empty(t, ideas.Ideas())
}

func TestIdeaStore_Add(t *testing.T) {
	tests := []struct {
		name        string
		request     usecase.AddIdeaRequest
		wantErr     error
		wantStage   domain.Stage
		wantType    domain.IdeaType
	}{
		{
			name: "正常なアイデア",
			request: usecase.AddIdeaRequest{
				Text:        "Automate meeting prep",
				Category:    domain.CategoryOperationsTech,
				Subcategory: "Automation",
				Type:        domain.IdeaTypeIdea,
			},
			wantStage: domain.StageWorkshopping,
			wantType:  domain.IdeaTypeIdea,
		},
		{
			name: "タイプ未指定はideaになる",
			request: usecase.AddIdeaRequest{
				Text:        "What custodian fits best?",
				Category:    domain.CategoryOperationsTech,
				Subcategory: "Data Flows",
			},
			wantStage: domain.StageWorkshopping,
			wantType:  domain.IdeaTypeIdea,
		},
		{
			name: "ステージ指定",
			request: usecase.AddIdeaRequest{
				Text:        "Launch postcards",
				Category:    domain.CategoryMarketingGrowth,
				Subcategory: "Postcards",
				Type:        domain.IdeaTypeIdea,
				Stage:       domain.StageReadyToGo,
			},
			wantStage: domain.StageReadyToGo,
			wantType:  domain.IdeaTypeIdea,
		},
		{
			name: "不正なカテゴリー",
			request: usecase.AddIdeaRequest{
				Text:     "bad",
				Category: domain.Category("Z"),
			},
			wantErr: usecase.ErrInvalidCategory,
		},
		{
			name: "不正なステージ",
			request: usecase.AddIdeaRequest{
				Text:        "bad",
				Category:    domain.CategoryClientExperience,
				Subcategory: "Onboarding",
				Stage:       domain.Stage("done"),
			},
			wantErr: usecase.ErrInvalidStage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas, _ := newLoadedIdeaStore(t)

			idea, err := ideas.Add(context.Background(), tt.request)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, idea.ID)
			assert.Equal(t, tt.wantStage, idea.Stage)
			assert.Equal(t, tt.wantType, idea.Type)
			assert.NotNil(t, idea.Images)
			assert.NotNil(t, idea.Notes)
			assert.NotNil(t, idea.LinkedDocs)

			got, err := ideas.IdeaByID(idea.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.request.Text, got.Text)
		})
	}
}

func TestIdeaStore_AddRollsBackOnFailure(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)
	before := len(ideas.Ideas())

	mem.FailureHook = failOn("set", domain.CollectionIdeas)
	_, err := ideas.Add(context.Background(), usecase.AddIdeaRequest{
		Text:        "will fail",
		Category:    domain.CategoryClientExperience,
		Subcategory: "Onboarding",
		Type:        domain.IdeaTypeIdea,
	})

	assert.ErrorIs(t, err, errRemote)
	assert.Len(t, ideas.Ideas(), before)
}

func TestIdeaStore_Update(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)

	text := "updated text"
	refined := true
	require.NoError(t, ideas.Update(context.Background(), "1", usecase.UpdateIdeaRequest{
		Text:    &text,
		Refined: &refined,
	}))

	got, err := ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.Equal(t, "updated text", got.Text)
	assert.True(t, got.Refined)
}

func TestIdeaStore_UpdateUnknownIDIsNoOp(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)

	text := "anything"
	assert.NoError(t, ideas.Update(context.Background(), "missing", usecase.UpdateIdeaRequest{Text: &text}))
}

func TestIdeaStore_UpdateRollsBackOnFailure(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)

	original, err := ideas.IdeaByID("1")
	require.NoError(t, err)

	mem.FailureHook = failOn("update", domain.CollectionIdeas)
	text := "will not stick"
	err = ideas.Update(context.Background(), "1", usecase.UpdateIdeaRequest{Text: &text})

	assert.ErrorIs(t, err, errRemote)
	got, err := ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.Equal(t, original.Text, got.Text)
}

func TestIdeaStore_Remove(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)

	require.NoError(t, ideas.Remove(context.Background(), "1"))
	_, err := ideas.IdeaByID("1")
	assert.ErrorIs(t, err, usecase.ErrIdeaNotFound)

	records, err := mem.GetAll(context.Background(), domain.CollectionIdeas)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// 既に存在しないIDの削除は黙ってno-op
	assert.NoError(t, ideas.Remove(context.Background(), "1"))
}

func TestIdeaStore_RemoveRollsBackOnFailure(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)

	mem.FailureHook = failOn("delete", domain.CollectionIdeas)
	err := ideas.Remove(context.Background(), "1")

	assert.ErrorIs(t, err, errRemote)
	_, err = ideas.IdeaByID("1")
	assert.NoError(t, err)
}

func TestIdeaStore_SetStageClearsPinnedWhenLeavingCurrentBest(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)

	// current_bestに昇格してピン留めする
	require.NoError(t, ideas.SetStage(context.Background(), "1", domain.StageCurrentBest))
	require.NoError(t, ideas.TogglePinned(context.Background(), "1"))
	got, err := ideas.IdeaByID("1")
	require.NoError(t, err)
	require.True(t, got.Pinned)

	// current_best以外へ移動するとピンは外れる
	require.NoError(t, ideas.SetStage(context.Background(), "1", domain.StageWorkshopping))
	got, err = ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageWorkshopping, got.Stage)
	assert.False(t, got.Pinned)
}

func TestIdeaStore_SetStageKeepsPinnedOnCurrentBest(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)

	require.NoError(t, ideas.SetStage(context.Background(), "1", domain.StageCurrentBest))
	require.NoError(t, ideas.TogglePinned(context.Background(), "1"))

	// current_best内での再設定はピンを維持する
	require.NoError(t, ideas.SetStage(context.Background(), "1", domain.StageCurrentBest))
	got, err := ideas.IdeaByID("1")
	require.NoError(t, err)
	assert.True(t, got.Pinned)
}

func TestIdeaStore_ToggleFocusIsExclusivePerPage(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)
	ctx := context.Background()

	// 両方ともA/Onboardingのworkshopping
	require.NoError(t, ideas.ToggleFocus(ctx, "1", domain.CategoryClientExperience, "Onboarding"))
	one, _ := ideas.IdeaByID("1")
	assert.True(t, one.Focused)

	// 2にフォーカスすると1のフォーカスは外れる
	require.NoError(t, ideas.ToggleFocus(ctx, "2", domain.CategoryClientExperience, "Onboarding"))
	one, _ = ideas.IdeaByID("1")
	two, _ := ideas.IdeaByID("2")
	assert.False(t, one.Focused)
	assert.True(t, two.Focused)

	// フォーカス中のアイデアをもう一度トグルすると解除のみ
	require.NoError(t, ideas.ToggleFocus(ctx, "2", domain.CategoryClientExperience, "Onboarding"))
	two, _ = ideas.IdeaByID("2")
	assert.False(t, two.Focused)
}

func TestIdeaStore_ToggleFocusReloadsOnFailure(t *testing.T) {
	ideas, mem := newLoadedIdeaStore(t)
	ctx := context.Background()

	mem.FailureHook = failOn("batchWrite", domain.CollectionIdeas)
	err := ideas.ToggleFocus(ctx, "1", domain.CategoryClientExperience, "Onboarding")

	assert.ErrorIs(t, err, errRemote)
	// 再読込によりストアの状態（フォーカスなし）と一致する
	got, lookupErr := ideas.IdeaByID("1")
	require.NoError(t, lookupErr)
	assert.False(t, got.Focused)
}

func TestIdeaStore_RenameSubcategory(t *testing.T) {
	ideas, _ := newLoadedIdeaStore(t)
	ctx := context.Background()

	other := addIdea(t, ideas, usecase.AddIdeaRequest{
		Text:        "unrelated",
		Category:    domain.CategoryClientExperience,
		Subcategory: "Year 1",
		Type:        domain.IdeaTypeIdea,
	})

	require.NoError(t, ideas.RenameSubcategory(ctx, domain.CategoryClientExperience, "Onboarding", "Intake"))

	for _, id := range []string{"1", "2"} {
		got, err := ideas.IdeaByID(id)
		require.NoError(t, err)
		assert.Equal(t, "Intake", got.Subcategory)
	}

	// 他のページのアイデアは変わらない
	got, err := ideas.IdeaByID(other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Year 1", got.Subcategory)
}

func TestIdeaStore_HandleOrphans(t *testing.T) {
	t.Run("deleteポリシー", func(t *testing.T) {
		ideas, mem := newLoadedIdeaStore(t)
		require.NoError(t, ideas.HandleOrphans(context.Background(),
			domain.CategoryClientExperience, "Onboarding", domain.OrphanDelete))

		assert.Empty(t, ideas.IdeasOn(domain.CategoryClientExperience, "Onboarding"))
		records, err := mem.GetAll(context.Background(), domain.CollectionIdeas)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("archiveポリシー", func(t *testing.T) {
		ideas, _ := newLoadedIdeaStore(t)
		require.NoError(t, ideas.SetStage(context.Background(), "1", domain.StageCurrentBest))
		require.NoError(t, ideas.TogglePinned(context.Background(), "1"))

		require.NoError(t, ideas.HandleOrphans(context.Background(),
			domain.CategoryClientExperience, "Onboarding", domain.OrphanArchive))

		for _, id := range []string{"1", "2"} {
			got, err := ideas.IdeaByID(id)
			require.NoError(t, err)
			assert.Equal(t, domain.StageArchived, got.Stage)
			assert.False(t, got.Pinned)
		}
	})
}
