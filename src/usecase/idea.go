package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ria-board/src/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrIdeaNotFound    = errors.New("idea not found")
	ErrInvalidCategory = errors.New("category must be one of A, B, C, D")
	ErrInvalidStage    = errors.New("stage must be current_best, workshopping, ready_to_go, or archived")
	ErrInvalidIdeaType = errors.New("type must be idea or question")
	ErrLoadFailed      = errors.New("failed to load data, please check your connection")
)

// seedIdeas is written to the store the first time it is found empty.
var seedIdeas = []domain.Idea{
	{
		ID:          "1",
		Text:        "Draft the 'Zero-Entry' upload flow for brokerage PDFs",
		Category:    domain.CategoryClientExperience,
		Subcategory: "Onboarding",
		Type:        domain.IdeaTypeIdea,
		Stage:       domain.StageWorkshopping,
	},
	{
		ID:          "2",
		Text:        "Script the 'Dream Retirement' opening question",
		Category:    domain.CategoryClientExperience,
		Subcategory: "Onboarding",
		Type:        domain.IdeaTypeIdea,
		Stage:       domain.StageWorkshopping,
	},
}

// AddIdeaRequest represents input for creating an idea
type AddIdeaRequest struct {
	ID          string
	Text        string
	Category    domain.Category
	Subcategory string
	Type        domain.IdeaType
	Stage       domain.Stage
	Goal        string
	Images      []string
	Notes       []domain.Note
	LinkedDocs  []string
}

// UpdateIdeaRequest represents a partial-field update of an idea.
// nilのフィールドは変更しない
type UpdateIdeaRequest struct {
	Text        *string
	Subcategory *string
	Refined     *bool
	Stage       *domain.Stage
	Pinned      *bool
	Focused     *bool
	Type        *domain.IdeaType
	Goal        *string
	Images      *[]string
	Notes       *[]domain.Note
	LinkedDocs  *[]string
}

// IdeaStore caches board ideas and mutates them optimistically against the
// remote store, rolling back (or reloading) on persistence failure.
type IdeaStore struct {
	mu     sync.Mutex
	store  domain.Store
	logger *logrus.Logger
	ideas  []domain.Idea
	loaded bool
}

// NewIdeaStore creates a new idea store
func NewIdeaStore(store domain.Store, logger *logrus.Logger) *IdeaStore {
	return &IdeaStore{
		store:  store,
		logger: logger,
	}
}

// Load fetches all ideas from the remote store, seeding it with the initial
// set when the collection is empty. On failure the cache is left empty and
// the error is retryable.
func (s *IdeaStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *IdeaStore) loadLocked(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionIdeas)
	if err != nil {
		s.logger.WithError(err).Error("アイデアの読み込みに失敗")
		s.ideas = nil
		s.loaded = false
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	ideas := make([]domain.Idea, 0, len(records))
	for _, rec := range records {
		var idea domain.Idea
		if err := json.Unmarshal(rec.Data, &idea); err != nil {
			s.logger.WithError(err).WithField("id", rec.ID).Warn("不正なアイデアレコードをスキップ")
			continue
		}
		idea.ID = rec.ID
		ideas = append(ideas, idea)
	}

	// 空のストアには初期データを投入する
	if len(ideas) == 0 {
		now := time.Now().UnixMilli()
		ops := make([]domain.BatchOp, 0, len(seedIdeas))
		for _, seed := range seedIdeas {
			seed.Timestamp = now
			seed.Goal = ""
			seed.Images = []string{}
			seed.Notes = []domain.Note{}
			seed.LinkedDocs = []string{}
			data, err := json.Marshal(seed)
			if err != nil {
				return err
			}
			ops = append(ops, domain.BatchOp{ID: seed.ID, Kind: domain.BatchSet, Payload: data})
			ideas = append(ideas, seed)
		}
		if err := s.store.BatchWrite(ctx, domain.CollectionIdeas, ops); err != nil {
			s.logger.WithError(err).Error("初期データの投入に失敗")
			s.ideas = nil
			s.loaded = false
			return fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
	}

	s.ideas = ideas
	s.loaded = true
	s.logger.WithField("count", len(ideas)).Info("アイデアを読み込みました")
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (s *IdeaStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Ideas returns a snapshot of all cached ideas.
func (s *IdeaStore) Ideas() []domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Idea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// IdeaByID returns the cached idea with the given id.
func (s *IdeaStore) IdeaByID(id string) (*domain.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			idea := s.ideas[i]
			return &idea, nil
		}
	}
	return nil, ErrIdeaNotFound
}

// IdeasIn returns the cached ideas assigned to the given category.
func (s *IdeaStore) IdeasIn(category domain.Category) []domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Idea
	for _, idea := range s.ideas {
		if idea.Category == category {
			out = append(out, idea)
		}
	}
	return out
}

// IdeasOn returns the cached ideas assigned to the given category and page.
func (s *IdeaStore) IdeasOn(category domain.Category, subcategory string) []domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Idea
	for _, idea := range s.ideas {
		if idea.Category == category && idea.Subcategory == subcategory {
			out = append(out, idea)
		}
	}
	return out
}

// Add creates a new idea, appends it to the cache immediately and persists
// it; on failure the just-added idea is removed again.
func (s *IdeaStore) Add(ctx context.Context, req AddIdeaRequest) (*domain.Idea, error) {
	if !req.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if req.Type == "" {
		req.Type = domain.IdeaTypeIdea
	} else if !req.Type.IsValid() {
		return nil, ErrInvalidIdeaType
	}

	idea := domain.Idea{
		ID:          req.ID,
		Text:        req.Text,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Timestamp:   time.Now().UnixMilli(),
		Stage:       req.Stage,
		Type:        req.Type,
		Goal:        req.Goal,
		Images:      req.Images,
		Notes:       req.Notes,
		LinkedDocs:  req.LinkedDocs,
	}
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	if idea.Stage == "" {
		idea.Stage = domain.StageWorkshopping
	} else if !idea.Stage.IsValid() {
		return nil, ErrInvalidStage
	}
	if idea.Images == nil {
		idea.Images = []string{}
	}
	if idea.Notes == nil {
		idea.Notes = []domain.Note{}
	}
	if idea.LinkedDocs == nil {
		idea.LinkedDocs = []string{}
	}

	data, err := json.Marshal(idea)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = applyOptimistic(ctx,
		func() { s.ideas = append(s.ideas, idea) },
		func(ctx context.Context) error {
			return s.store.Set(ctx, domain.CollectionIdeas, idea.ID, data)
		},
		func() { s.removeLocked(idea.ID) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("idea_id", idea.ID).Error("アイデアの保存に失敗")
		return nil, err
	}

	s.logger.WithField("idea_id", idea.ID).Info("アイデアを作成しました")
	return &idea, nil
}

// Update merges the given fields into the cached idea immediately and
// persists the diff; on failure the pre-update snapshot is restored.
// Unknown idea ids are a silent no-op.
func (s *IdeaStore) Update(ctx context.Context, id string, req UpdateIdeaRequest) error {
	if req.Stage != nil && !req.Stage.IsValid() {
		return ErrInvalidStage
	}
	if req.Type != nil && !req.Type.IsValid() {
		return ErrInvalidIdeaType
	}

	fields := req.fields()
	if len(fields) == 0 {
		return nil
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	snapshot := s.ideas[idx]

	err = applyOptimistic(ctx,
		func() { req.apply(&s.ideas[idx]) },
		func(ctx context.Context) error {
			return s.store.Update(ctx, domain.CollectionIdeas, id, patch)
		},
		func() {
			if i := s.indexLocked(id); i >= 0 {
				s.ideas[i] = snapshot
			}
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("idea_id", id).Error("アイデアの更新に失敗")
		return err
	}
	return nil
}

// Remove deletes the idea from the cache immediately and persists the
// deletion; on failure the removed idea is re-inserted.
func (s *IdeaStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	removed := s.ideas[idx]

	err := applyOptimistic(ctx,
		func() { s.removeLocked(id) },
		func(ctx context.Context) error {
			return s.store.Delete(ctx, domain.CollectionIdeas, id)
		},
		func() { s.ideas = append(s.ideas, removed) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("idea_id", id).Error("アイデアの削除に失敗")
		return err
	}

	s.logger.WithField("idea_id", id).Info("アイデアを削除しました")
	return nil
}

// SetStage moves the idea to the given stage. Moving away from current_best
// also clears the pinned flag.
func (s *IdeaStore) SetStage(ctx context.Context, id string, stage domain.Stage) error {
	if !stage.IsValid() {
		return ErrInvalidStage
	}

	req := UpdateIdeaRequest{Stage: &stage}
	if stage != domain.StageCurrentBest {
		pinned := false
		req.Pinned = &pinned
	}
	return s.Update(ctx, id, req)
}

// TogglePinned flips the pinned flag of the idea.
func (s *IdeaStore) TogglePinned(ctx context.Context, id string) error {
	idea, err := s.IdeaByID(id)
	if err != nil {
		return nil
	}
	pinned := !idea.Pinned
	return s.Update(ctx, id, UpdateIdeaRequest{Pinned: &pinned})
}

// ToggleFocus sets focus on the target idea and clears it on every other
// workshopping idea of the same (category, page) in one atomic batch. If the
// target is already focused, only its own focus is cleared. On batch failure
// the full idea set is reloaded to resynchronize.
func (s *IdeaStore) ToggleFocus(ctx context.Context, id string, category domain.Category, subcategory string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}

	type focusChange struct {
		id      string
		focused bool
	}
	var changes []focusChange

	if s.ideas[idx].Focused {
		// 既にフォーカス中なら自分のフォーカスだけ外す
		changes = append(changes, focusChange{id: id, focused: false})
	} else {
		for _, idea := range s.ideas {
			if idea.ID == id {
				changes = append(changes, focusChange{id: idea.ID, focused: true})
				continue
			}
			sameSection := idea.Stage == domain.StageWorkshopping &&
				idea.Category == category &&
				idea.Subcategory == subcategory
			if sameSection && idea.Focused {
				changes = append(changes, focusChange{id: idea.ID, focused: false})
			}
		}
	}

	ops := make([]domain.BatchOp, 0, len(changes))
	for _, ch := range changes {
		payload, err := json.Marshal(map[string]bool{"focused": ch.focused})
		if err != nil {
			return err
		}
		ops = append(ops, domain.BatchOp{ID: ch.id, Kind: domain.BatchUpdate, Payload: payload})
	}

	err := applyOptimistic(ctx,
		func() {
			for _, ch := range changes {
				if i := s.indexLocked(ch.id); i >= 0 {
					s.ideas[i].Focused = ch.focused
				}
			}
		},
		func(ctx context.Context) error {
			return s.store.BatchWrite(ctx, domain.CollectionIdeas, ops)
		},
		func() {
			// 複数レコードに触れたため、正確なロールバックではなく再読込で整合させる
			if err := s.loadLocked(ctx); err != nil {
				s.logger.WithError(err).Error("フォーカス更新後の再読込に失敗")
			}
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("idea_id", id).Error("フォーカスの更新に失敗")
		return err
	}
	return nil
}

// RenameSubcategory moves every idea on (category, oldName) to newName in one
// atomic batch. Used by the page registry's rename cascade; on failure the
// caller is expected to reload.
func (s *IdeaStore) RenameSubcategory(ctx context.Context, category domain.Category, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch, err := json.Marshal(map[string]string{"subcategory": newName})
	if err != nil {
		return err
	}

	var ops []domain.BatchOp
	var touched []int
	for i, idea := range s.ideas {
		if idea.Category == category && idea.Subcategory == oldName {
			ops = append(ops, domain.BatchOp{ID: idea.ID, Kind: domain.BatchUpdate, Payload: patch})
			touched = append(touched, i)
		}
	}
	if len(ops) == 0 {
		return nil
	}

	for _, i := range touched {
		s.ideas[i].Subcategory = newName
	}
	if err := s.store.BatchWrite(ctx, domain.CollectionIdeas, ops); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"category": category,
		"old":      oldName,
		"new":      newName,
		"count":    len(ops),
	}).Info("ページ名の変更をアイデアに反映しました")
	return nil
}

// HandleOrphans deletes or archives every idea on (category, page) in one
// atomic batch, per the orphan policy of a page deletion.
func (s *IdeaStore) HandleOrphans(ctx context.Context, category domain.Category, subcategory string, policy domain.OrphanPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ops []domain.BatchOp
	var ids []string
	for _, idea := range s.ideas {
		if idea.Category == category && idea.Subcategory == subcategory {
			ids = append(ids, idea.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	switch policy {
	case domain.OrphanDelete:
		for _, id := range ids {
			ops = append(ops, domain.BatchOp{ID: id, Kind: domain.BatchDelete})
		}
	case domain.OrphanArchive:
		patch, err := json.Marshal(map[string]interface{}{
			"stage":  domain.StageArchived,
			"pinned": false,
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			ops = append(ops, domain.BatchOp{ID: id, Kind: domain.BatchUpdate, Payload: patch})
		}
	default:
		return fmt.Errorf("unknown orphan policy: %s", policy)
	}

	for _, id := range ids {
		i := s.indexLocked(id)
		if i < 0 {
			continue
		}
		if policy == domain.OrphanDelete {
			s.removeLocked(id)
		} else {
			s.ideas[i].Stage = domain.StageArchived
			s.ideas[i].Pinned = false
		}
	}

	if err := s.store.BatchWrite(ctx, domain.CollectionIdeas, ops); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"category": category,
		"page":     subcategory,
		"policy":   policy,
		"count":    len(ids),
	}).Info("削除ページのアイデアを処理しました")
	return nil
}

func (s *IdeaStore) indexLocked(id string) int {
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *IdeaStore) removeLocked(id string) {
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
			return
		}
	}
}

func (r UpdateIdeaRequest) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Text != nil {
		fields["text"] = *r.Text
	}
	if r.Subcategory != nil {
		fields["subcategory"] = *r.Subcategory
	}
	if r.Refined != nil {
		fields["refined"] = *r.Refined
	}
	if r.Stage != nil {
		fields["stage"] = *r.Stage
	}
	if r.Pinned != nil {
		fields["pinned"] = *r.Pinned
	}
	if r.Focused != nil {
		fields["focused"] = *r.Focused
	}
	if r.Type != nil {
		fields["type"] = *r.Type
	}
	if r.Goal != nil {
		fields["goal"] = *r.Goal
	}
	if r.Images != nil {
		fields["images"] = *r.Images
	}
	if r.Notes != nil {
		fields["notes"] = *r.Notes
	}
	if r.LinkedDocs != nil {
		fields["linkedDocs"] = *r.LinkedDocs
	}
	return fields
}

func (r UpdateIdeaRequest) apply(idea *domain.Idea) {
	if r.Text != nil {
		idea.Text = *r.Text
	}
	if r.Subcategory != nil {
		idea.Subcategory = *r.Subcategory
	}
	if r.Refined != nil {
		idea.Refined = *r.Refined
	}
	if r.Stage != nil {
		idea.Stage = *r.Stage
	}
	if r.Pinned != nil {
		idea.Pinned = *r.Pinned
	}
	if r.Focused != nil {
		idea.Focused = *r.Focused
	}
	if r.Type != nil {
		idea.Type = *r.Type
	}
	if r.Goal != nil {
		idea.Goal = *r.Goal
	}
	if r.Images != nil {
		idea.Images = *r.Images
	}
	if r.Notes != nil {
		idea.Notes = *r.Notes
	}
	if r.LinkedDocs != nil {
		idea.LinkedDocs = *r.LinkedDocs
	}
}
