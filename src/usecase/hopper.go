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
	ErrHopperTitleEmpty    = errors.New("hopper idea title is required")
	ErrInvalidHopperStatus = errors.New("status must be new, exploring, developing, implemented, or parked")
)

// AddHopperRequest represents input for quick-capturing an idea
type AddHopperRequest struct {
	Title         string
	Description   string
	ReferenceURLs []string
	Priority      domain.Priority
	Tags          []string
	Notes         string
}

// UpdateHopperRequest represents a partial-field update of a hopper idea
type UpdateHopperRequest struct {
	Title         *string
	Description   *string
	ReferenceURLs *[]string
	Status        *domain.HopperStatus
	Priority      *domain.Priority
	Tags          *[]string
	Notes         *string
}

// HopperStore caches quick-captured ideas awaiting triage.
type HopperStore struct {
	mu     sync.Mutex
	store  domain.Store
	logger *logrus.Logger
	ideas  []domain.HopperIdea
	loaded bool
}

// NewHopperStore creates a new hopper store
func NewHopperStore(store domain.Store, logger *logrus.Logger) *HopperStore {
	return &HopperStore{store: store, logger: logger}
}

// Load fetches all hopper ideas, migrating the legacy single referenceUrl
// field into referenceUrls.
func (s *HopperStore) Load(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionIdeaHopper)
	if err != nil {
		s.logger.WithError(err).Error("アイデアホッパーの読み込みに失敗")
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	ideas := make([]domain.HopperIdea, 0, len(records))
	for _, rec := range records {
		var idea domain.HopperIdea
		if err := json.Unmarshal(rec.Data, &idea); err != nil {
			s.logger.WithError(err).WithField("id", rec.ID).Warn("不正なホッパーレコードをスキップ")
			continue
		}
		idea.ID = rec.ID

		// 旧形式のreferenceUrlをreferenceUrlsへ移行
		if idea.ReferenceURL != "" && !contains(idea.ReferenceURLs, idea.ReferenceURL) {
			idea.ReferenceURLs = append([]string{idea.ReferenceURL}, idea.ReferenceURLs...)
		}
		idea.ReferenceURL = ""
		if idea.ReferenceURLs == nil {
			idea.ReferenceURLs = []string{}
		}
		ideas = append(ideas, idea)
	}

	s.mu.Lock()
	s.ideas = ideas
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (s *HopperStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Ideas returns a snapshot of all cached hopper ideas.
func (s *HopperStore) Ideas() []domain.HopperIdea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.HopperIdea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// Add creates a hopper idea optimistically and persists it.
func (s *HopperStore) Add(ctx context.Context, req AddHopperRequest) (*domain.HopperIdea, error) {
	if req.Title == "" {
		return nil, ErrHopperTitleEmpty
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	now := time.Now().UnixMilli()
	idea := domain.HopperIdea{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		ReferenceURLs: req.ReferenceURLs,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        domain.HopperNew,
		Priority:      priority,
		Tags:          req.Tags,
		Notes:         req.Notes,
	}
	if idea.ReferenceURLs == nil {
		idea.ReferenceURLs = []string{}
	}
	if idea.Tags == nil {
		idea.Tags = []string{}
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
			return s.store.Set(ctx, domain.CollectionIdeaHopper, idea.ID, data)
		},
		func() { s.removeLocked(idea.ID) },
	)
	if err != nil {
		s.logger.WithError(err).Error("ホッパーアイデアの保存に失敗")
		return nil, err
	}
	return &idea, nil
}

// Update merges fields into the cached hopper idea and persists the diff.
func (s *HopperStore) Update(ctx context.Context, id string, req UpdateHopperRequest) error {
	if req.Status != nil && !req.Status.IsValid() {
		return ErrInvalidHopperStatus
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return ErrInvalidPriority
	}

	fields := map[string]interface{}{"updatedAt": time.Now().UnixMilli()}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ReferenceURLs != nil {
		fields["referenceUrls"] = *req.ReferenceURLs
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
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
		func() {
			h := &s.ideas[idx]
			h.UpdatedAt = fields["updatedAt"].(int64)
			if req.Title != nil {
				h.Title = *req.Title
			}
			if req.Description != nil {
				h.Description = *req.Description
			}
			if req.ReferenceURLs != nil {
				h.ReferenceURLs = *req.ReferenceURLs
			}
			if req.Status != nil {
				h.Status = *req.Status
			}
			if req.Priority != nil {
				h.Priority = *req.Priority
			}
			if req.Tags != nil {
				h.Tags = *req.Tags
			}
			if req.Notes != nil {
				h.Notes = *req.Notes
			}
		},
		func(ctx context.Context) error {
			return s.store.Update(ctx, domain.CollectionIdeaHopper, id, patch)
		},
		func() {
			if i := s.indexLocked(id); i >= 0 {
				s.ideas[i] = snapshot
			}
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("hopper_id", id).Error("ホッパーアイデアの更新に失敗")
		return err
	}
	return nil
}

// Remove deletes the hopper idea optimistically.
func (s *HopperStore) Remove(ctx context.Context, id string) error {
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
			return s.store.Delete(ctx, domain.CollectionIdeaHopper, id)
		},
		func() { s.ideas = append(s.ideas, removed) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("hopper_id", id).Error("ホッパーアイデアの削除に失敗")
		return err
	}
	return nil
}

func (s *HopperStore) indexLocked(id string) int {
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *HopperStore) removeLocked(id string) {
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
			return
		}
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
