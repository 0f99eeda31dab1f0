package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ria-board/src/domain"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidChecklistStatus = errors.New("status must be not_started, in_progress, or complete")
	ErrChecklistItemNotFound  = errors.New("checklist item not found")
)

// ChecklistProgress summarizes a checklist page's completion
type ChecklistProgress struct {
	PageID     string `json:"pageId"`
	Total      int    `json:"total"`
	Complete   int    `json:"complete"`
	InProgress int    `json:"inProgress"`
}

// ChecklistStore persists the tri-state progress of the fixed pre-launch
// checklist items.
type ChecklistStore struct {
	mu     sync.Mutex
	store  domain.Store
	logger *logrus.Logger
	states map[string]domain.ChecklistItemState
	loaded bool
}

// NewChecklistStore creates a new checklist store
func NewChecklistStore(store domain.Store, logger *logrus.Logger) *ChecklistStore {
	return &ChecklistStore{
		store:  store,
		logger: logger,
		states: make(map[string]domain.ChecklistItemState),
	}
}

// Load fetches persisted item states from the remote store.
func (s *ChecklistStore) Load(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionChecklist)
	if err != nil {
		s.logger.WithError(err).Error("チェックリスト状態の読み込みに失敗")
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	states := make(map[string]domain.ChecklistItemState, len(records))
	for _, rec := range records {
		var state domain.ChecklistItemState
		if err := json.Unmarshal(rec.Data, &state); err != nil {
			s.logger.WithError(err).WithField("id", rec.ID).Warn("不正なチェックリストレコードをスキップ")
			continue
		}
		state.ItemID = rec.ID
		states[state.ItemID] = state
	}

	s.mu.Lock()
	s.states = states
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (s *ChecklistStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Status returns the persisted status of one item, defaulting to not_started.
func (s *ChecklistStore) Status(itemID string) domain.ChecklistStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[itemID]; ok {
		return state.Status
	}
	return domain.ChecklistNotStarted
}

// States returns the status of every checklist item keyed by item id; items
// without a persisted state are not_started.
func (s *ChecklistStore) States() map[string]domain.ChecklistStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.ChecklistStatus)
	for _, page := range domain.ChecklistPages {
		for _, item := range page.Items {
			out[item.ID] = domain.ChecklistNotStarted
		}
	}
	for id, state := range s.states {
		if _, ok := out[id]; ok {
			out[id] = state.Status
		}
	}
	return out
}

// SetStatus updates one item's status optimistically.
func (s *ChecklistStore) SetStatus(ctx context.Context, itemID string, status domain.ChecklistStatus) error {
	if !status.IsValid() {
		return ErrInvalidChecklistStatus
	}
	if _, ok := domain.FindChecklistItem(itemID); !ok {
		return ErrChecklistItemNotFound
	}

	state := domain.ChecklistItemState{
		ItemID:    itemID,
		Status:    status,
		UpdatedAt: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, hadPrevious := s.states[itemID]

	err = applyOptimistic(ctx,
		func() { s.states[itemID] = state },
		func(ctx context.Context) error {
			return s.store.Set(ctx, domain.CollectionChecklist, itemID, data)
		},
		func() {
			if hadPrevious {
				s.states[itemID] = previous
			} else {
				delete(s.states, itemID)
			}
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("item_id", itemID).Error("チェックリスト状態の保存に失敗")
		return err
	}
	return nil
}

// Progress summarizes completion per checklist page.
func (s *ChecklistStore) Progress() []ChecklistProgress {
	states := s.States()

	out := make([]ChecklistProgress, 0, len(domain.ChecklistPages))
	for _, page := range domain.ChecklistPages {
		progress := ChecklistProgress{PageID: page.ID, Total: len(page.Items)}
		for _, item := range page.Items {
			switch states[item.ID] {
			case domain.ChecklistComplete:
				progress.Complete++
			case domain.ChecklistInProgress:
				progress.InProgress++
			}
		}
		out = append(out, progress)
	}
	return out
}
