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

var ErrCanonTitleEmpty = errors.New("canon document title is required")

// Default assistant settings, persisted on first load.
const (
	DefaultUserContext = "I am David, a CFA & CFP professional. I prefer concise, technical answers. I am building a technology-first RIA."

	DefaultProjectConstraints = `Budget: Low-cost/Bootstrapped.
Timeline: Launch in 3 months.
Location: Connecticut.
Key Tech: Wealthbox, Altruist.

STRICT RESTRICTIONS (DO NOT USE/SUGGEST):
- Vendors: Advyzon, FP Alpha, Salesforce.
- Tools: Notion, Figma.`
)

const settingsRecordID = "default"

// defaultCanonDocs is written to the store the first time it is found empty.
var defaultCanonDocs = []domain.CanonDoc{
	{
		ID:      "master-index",
		Title:   "Master Index",
		Content: "1. Compliance First.\n2. Tech-enabled workflows.\n3. Low overhead.",
	},
}

// ConsultantStore caches the assistant knowledge base (canon documents) and
// the user-editable constraint settings.
type ConsultantStore struct {
	mu       sync.Mutex
	store    domain.Store
	logger   *logrus.Logger
	canon    []domain.CanonDoc
	settings domain.ConsultantSettings
	loaded   bool
}

// NewConsultantStore creates a new consultant store
func NewConsultantStore(store domain.Store, logger *logrus.Logger) *ConsultantStore {
	return &ConsultantStore{
		store:  store,
		logger: logger,
		settings: domain.ConsultantSettings{
			UserContext:        DefaultUserContext,
			ProjectConstraints: DefaultProjectConstraints,
		},
	}
}

// Load fetches canon documents and settings, seeding defaults when absent.
func (s *ConsultantStore) Load(ctx context.Context) error {
	if err := s.loadCanon(ctx); err != nil {
		s.setLoaded(false)
		return err
	}
	if err := s.loadSettings(ctx); err != nil {
		s.setLoaded(false)
		return err
	}
	s.setLoaded(true)
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (s *ConsultantStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *ConsultantStore) setLoaded(v bool) {
	s.mu.Lock()
	s.loaded = v
	s.mu.Unlock()
}

func (s *ConsultantStore) loadCanon(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionCanon)
	if err != nil {
		s.logger.WithError(err).Error("ナレッジベースの読み込みに失敗")
		// UIを空にしないためデフォルトへフォールバック
		s.mu.Lock()
		s.canon = append([]domain.CanonDoc{}, defaultCanonDocs...)
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	docs := make([]domain.CanonDoc, 0, len(records))
	for _, rec := range records {
		var doc domain.CanonDoc
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			s.logger.WithError(err).WithField("id", rec.ID).Warn("不正なカノンレコードをスキップ")
			continue
		}
		doc.ID = rec.ID
		docs = append(docs, doc)
	}

	// 空のストアにはデフォルトのカノンを投入する
	if len(docs) == 0 {
		now := time.Now().UnixMilli()
		for _, doc := range defaultCanonDocs {
			doc.CreatedAt = now
			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err := s.store.Set(ctx, domain.CollectionCanon, doc.ID, data); err != nil {
				s.logger.WithError(err).Error("デフォルトカノンの投入に失敗")
				break
			}
			docs = append(docs, doc)
		}
	}

	s.mu.Lock()
	s.canon = docs
	s.mu.Unlock()
	return nil
}

func (s *ConsultantStore) loadSettings(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionSettings)
	if err != nil {
		s.logger.WithError(err).Error("設定の読み込みに失敗")
		// デフォルト設定のままで動作は継続できる
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	for _, rec := range records {
		if rec.ID != settingsRecordID {
			continue
		}
		var settings domain.ConsultantSettings
		if err := json.Unmarshal(rec.Data, &settings); err != nil {
			s.logger.WithError(err).Warn("不正な設定レコードをスキップ")
			break
		}
		s.mu.Lock()
		s.settings = settings
		s.mu.Unlock()
		return nil
	}

	// 保存済み設定が無ければデフォルトを永続化する
	s.mu.Lock()
	defaults := s.settings
	defaults.UpdatedAt = time.Now().UnixMilli()
	s.mu.Unlock()

	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, domain.CollectionSettings, settingsRecordID, data); err != nil {
		s.logger.WithError(err).Warn("デフォルト設定の保存に失敗")
	}
	return nil
}

// CanonDocs returns a snapshot of the knowledge-base documents.
func (s *ConsultantStore) CanonDocs() []domain.CanonDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CanonDoc, len(s.canon))
	copy(out, s.canon)
	return out
}

// Settings returns the current assistant settings.
func (s *ConsultantStore) Settings() domain.ConsultantSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// AddCanonDoc creates a knowledge-base document optimistically.
func (s *ConsultantStore) AddCanonDoc(ctx context.Context, title, content string) (*domain.CanonDoc, error) {
	if title == "" {
		return nil, ErrCanonTitleEmpty
	}

	doc := domain.CanonDoc{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = applyOptimistic(ctx,
		func() { s.canon = append(s.canon, doc) },
		func(ctx context.Context) error {
			return s.store.Set(ctx, domain.CollectionCanon, doc.ID, data)
		},
		func() { s.removeCanonLocked(doc.ID) },
	)
	if err != nil {
		s.logger.WithError(err).Error("カノンドキュメントの保存に失敗")
		return nil, err
	}
	return &doc, nil
}

// DeleteCanonDoc removes a knowledge-base document optimistically.
func (s *ConsultantStore) DeleteCanonDoc(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed *domain.CanonDoc
	for i := range s.canon {
		if s.canon[i].ID == id {
			doc := s.canon[i]
			removed = &doc
			break
		}
	}
	if removed == nil {
		return nil
	}

	err := applyOptimistic(ctx,
		func() { s.removeCanonLocked(id) },
		func(ctx context.Context) error {
			return s.store.Delete(ctx, domain.CollectionCanon, id)
		},
		func() { s.canon = append(s.canon, *removed) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("canon_id", id).Error("カノンドキュメントの削除に失敗")
		return err
	}
	return nil
}

// SaveSettings updates both settings fields optimistically.
func (s *ConsultantStore) SaveSettings(ctx context.Context, userContext, projectConstraints string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.settings
	next := domain.ConsultantSettings{
		UserContext:        userContext,
		ProjectConstraints: projectConstraints,
		UpdatedAt:          time.Now().UnixMilli(),
	}

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = applyOptimistic(ctx,
		func() { s.settings = next },
		func(ctx context.Context) error {
			return s.store.Set(ctx, domain.CollectionSettings, settingsRecordID, data)
		},
		func() { s.settings = previous },
	)
	if err != nil {
		s.logger.WithError(err).Error("設定の保存に失敗")
		return err
	}
	return nil
}

func (s *ConsultantStore) removeCanonLocked(id string) {
	for i := range s.canon {
		if s.canon[i].ID == id {
			s.canon = append(s.canon[:i], s.canon[i+1:]...)
			return
		}
	}
}
