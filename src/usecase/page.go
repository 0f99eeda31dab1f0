package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ria-board/src/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Page validation and persistence errors. The messages are user-facing and
// returned to the client verbatim.
var (
	ErrPageNameEmpty          = errors.New("Page name cannot be empty")
	ErrPageNameTooLong        = errors.New("Page name must be 50 characters or less")
	ErrPageNameExists         = errors.New("A page with this name already exists")
	ErrPageDescriptionTooLong = errors.New("Description must be 200 characters or less")
	ErrPageNotFound           = errors.New("Page not found")
	ErrPageSaveFailed         = errors.New("Failed to save page")
	ErrInvalidOrphanPolicy    = errors.New("orphan policy must be delete or archive")
)

// PageRegistry maintains the default and custom page sets per category,
// validates page names, cascades renames and deletions to ideas, and keeps
// the persisted display order.
type PageRegistry struct {
	mu     sync.Mutex
	store  domain.Store
	ideas  *IdeaStore
	logger *logrus.Logger
	pages  []domain.CustomPage
	orders map[domain.Category][]string
	loaded bool
}

// NewPageRegistry creates a new page registry
func NewPageRegistry(store domain.Store, ideas *IdeaStore, logger *logrus.Logger) *PageRegistry {
	return &PageRegistry{
		store:  store,
		ideas:  ideas,
		logger: logger,
		orders: make(map[domain.Category][]string),
	}
}

// Load fetches custom pages and persisted page orders from the remote store.
func (r *PageRegistry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *PageRegistry) loadLocked(ctx context.Context) error {
	pageRecords, err := r.store.GetAll(ctx, domain.CollectionCustomPages)
	if err != nil {
		r.logger.WithError(err).Error("カスタムページの読み込みに失敗")
		r.loaded = false
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	pages := make([]domain.CustomPage, 0, len(pageRecords))
	for _, rec := range pageRecords {
		var page domain.CustomPage
		if err := json.Unmarshal(rec.Data, &page); err != nil {
			r.logger.WithError(err).WithField("id", rec.ID).Warn("不正なページレコードをスキップ")
			continue
		}
		page.ID = rec.ID
		pages = append(pages, page)
	}

	orderRecords, err := r.store.GetAll(ctx, domain.CollectionPageOrders)
	if err != nil {
		r.logger.WithError(err).Error("ページ順序の読み込みに失敗")
		r.loaded = false
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	orders := make(map[domain.Category][]string, len(orderRecords))
	for _, rec := range orderRecords {
		var order domain.PageOrder
		if err := json.Unmarshal(rec.Data, &order); err != nil {
			r.logger.WithError(err).WithField("id", rec.ID).Warn("不正な順序レコードをスキップ")
			continue
		}
		orders[order.Category] = order.Names
	}

	r.pages = pages
	r.orders = orders
	r.loaded = true
	r.logger.WithFields(logrus.Fields{
		"pages":  len(pages),
		"orders": len(orders),
	}).Info("ページ情報を読み込みました")
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (r *PageRegistry) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// CustomPages returns a snapshot of all custom pages.
func (r *PageRegistry) CustomPages() []domain.CustomPage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CustomPage, len(r.pages))
	copy(out, r.pages)
	return out
}

// PageByID returns the custom page with the given id.
func (r *PageRegistry) PageByID(id string) (*domain.CustomPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.pageByIDLocked(id); p != nil {
		page := *p
		return &page, nil
	}
	return nil, ErrPageNotFound
}

// PagesForCategory returns the ordered page names of the category: the
// persisted order first (restricted to pages that still exist), then any
// pages missing from it in natural order, defaults in declared order
// followed by custom pages by creation time.
func (r *PageRegistry) PagesForCategory(category domain.Category) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pagesForCategoryLocked(category)
}

func (r *PageRegistry) pagesForCategoryLocked(category domain.Category) []string {
	natural := r.naturalOrderLocked(category)

	stored, ok := r.orders[category]
	if !ok || len(stored) == 0 {
		return natural
	}

	known := make(map[string]bool, len(natural))
	for _, name := range natural {
		known[name] = true
	}

	var out []string
	listed := make(map[string]bool)
	for _, name := range stored {
		if known[name] && !listed[name] {
			out = append(out, name)
			listed[name] = true
		}
	}
	// 順序に無いページは自然順のまま末尾に並べる
	for _, name := range natural {
		if !listed[name] {
			out = append(out, name)
		}
	}
	return out
}

func (r *PageRegistry) naturalOrderLocked(category domain.Category) []string {
	var names []string
	for _, dp := range category.DefaultPages() {
		names = append(names, dp.Name)
	}

	var customs []domain.CustomPage
	for _, p := range r.pages {
		if p.Category == category {
			customs = append(customs, p)
		}
	}
	sort.SliceStable(customs, func(i, j int) bool { return customs[i].CreatedAt < customs[j].CreatedAt })
	for _, p := range customs {
		names = append(names, p.Name)
	}
	return names
}

// DescriptionFor returns the description of the named page, preferring the
// default page set, then custom pages, else empty.
func (r *PageRegistry) DescriptionFor(category domain.Category, pageName string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dp := range category.DefaultPages() {
		if dp.Name == pageName {
			return dp.Description
		}
	}
	for _, p := range r.pages {
		if p.Category == category && p.Name == pageName {
			return p.Description
		}
	}
	return ""
}

// IsCustomPage reports whether the name is not one of the category's
// default page names.
func (r *PageRegistry) IsCustomPage(category domain.Category, pageName string) bool {
	for _, dp := range category.DefaultPages() {
		if dp.Name == pageName {
			return false
		}
	}
	return true
}

// ValidateName checks a candidate page name for emptiness, length and
// case-insensitive collisions within the category. The page identified by
// excludePageID is exempt from the collision check.
func (r *PageRegistry) ValidateName(category domain.Category, candidate, excludePageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validateNameLocked(category, candidate, excludePageID)
}

func (r *PageRegistry) validateNameLocked(category domain.Category, candidate, excludePageID string) error {
	name := strings.TrimSpace(candidate)
	if name == "" {
		return ErrPageNameEmpty
	}
	if len([]rune(name)) > domain.PageNameMaxLen {
		return ErrPageNameTooLong
	}

	lower := strings.ToLower(name)
	for _, dp := range category.DefaultPages() {
		if strings.ToLower(dp.Name) == lower {
			return ErrPageNameExists
		}
	}
	for _, p := range r.pages {
		if p.Category != category || p.ID == excludePageID {
			continue
		}
		if strings.ToLower(p.Name) == lower {
			return ErrPageNameExists
		}
	}
	return nil
}

func validateDescription(description string) error {
	if len([]rune(strings.TrimSpace(description))) > domain.PageDescriptionMaxLen {
		return ErrPageDescriptionTooLong
	}
	return nil
}

// AddPage validates and creates a custom page, persists it, and appends its
// name to the category's persisted order. On a failed remote write the local
// addition is rolled back and a generic save error returned.
func (r *PageRegistry) AddPage(ctx context.Context, category domain.Category, name, description string) (*domain.CustomPage, error) {
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateNameLocked(category, name, ""); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	page := domain.CustomPage{
		ID:          uuid.NewString(),
		Category:    category,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UnixMilli(),
	}

	data, err := json.Marshal(page)
	if err != nil {
		return nil, err
	}

	err = applyOptimistic(ctx,
		func() { r.pages = append(r.pages, page) },
		func(ctx context.Context) error {
			return r.store.Set(ctx, domain.CollectionCustomPages, page.ID, data)
		},
		func() { r.removePageLocked(page.ID) },
	)
	if err != nil {
		r.logger.WithError(err).WithField("page", page.Name).Error("ページの保存に失敗")
		return nil, ErrPageSaveFailed
	}

	// 保存済みの表示順がある場合のみ末尾に追加する。順序の保存に失敗しても
	// ページ自体は有効なまま（順序に無いページは自然順で末尾に並ぶ）
	if stored, ok := r.orders[category]; ok && len(stored) > 0 {
		order := append(append([]string{}, stored...), page.Name)
		if err := r.persistOrderLocked(ctx, category, order); err != nil {
			r.logger.WithError(err).WithField("category", category).Warn("ページ順序の保存に失敗")
		}
	}

	r.logger.WithFields(logrus.Fields{
		"page_id":  page.ID,
		"category": category,
		"name":     page.Name,
	}).Info("カスタムページを作成しました")
	return &page, nil
}

// RenamePage renames the custom page, cascades the new name to every idea on
// the old name, and substitutes the name in the persisted order. A changed
// description bundled with the call is persisted as well. On any remote
// failure the full page and idea state is reloaded from the store.
func (r *PageRegistry) RenamePage(ctx context.Context, pageID, newName, newDescription string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page := r.pageByIDLocked(pageID)
	if page == nil {
		return ErrPageNotFound
	}

	if err := r.validateNameLocked(page.Category, newName, pageID); err != nil {
		return err
	}
	if err := validateDescription(newDescription); err != nil {
		return err
	}

	oldName := page.Name
	name := strings.TrimSpace(newName)
	description := strings.TrimSpace(newDescription)
	if name == oldName && description == page.Description {
		return nil
	}

	now := time.Now().UnixMilli()
	patch, err := json.Marshal(map[string]interface{}{
		"name":        name,
		"description": description,
		"updatedAt":   now,
	})
	if err != nil {
		return err
	}

	page.Name = name
	page.Description = description
	page.UpdatedAt = now

	if err := r.store.Update(ctx, domain.CollectionCustomPages, pageID, patch); err != nil {
		r.logger.WithError(err).WithField("page_id", pageID).Error("ページ名の変更に失敗")
		r.reloadAllLocked(ctx)
		return ErrPageSaveFailed
	}

	if name != oldName {
		// アイデア側のページ参照は名前で持つため一括で付け替える
		if err := r.ideas.RenameSubcategory(ctx, page.Category, oldName, name); err != nil {
			r.logger.WithError(err).WithField("page_id", pageID).Error("ページ名変更の反映に失敗")
			r.reloadAllLocked(ctx)
			return ErrPageSaveFailed
		}

		if stored, ok := r.orders[page.Category]; ok {
			order := make([]string, len(stored))
			for i, n := range stored {
				if n == oldName {
					order[i] = name
				} else {
					order[i] = n
				}
			}
			if err := r.persistOrderLocked(ctx, page.Category, order); err != nil {
				r.logger.WithError(err).WithField("page_id", pageID).Error("ページ順序の更新に失敗")
				r.reloadAllLocked(ctx)
				return ErrPageSaveFailed
			}
		}
	}

	r.logger.WithFields(logrus.Fields{
		"page_id": pageID,
		"old":     oldName,
		"new":     name,
	}).Info("ページ名を変更しました")
	return nil
}

// UpdateDescription updates only the description of a custom page. On remote
// failure the page set is reloaded and an error returned.
func (r *PageRegistry) UpdateDescription(ctx context.Context, pageID, description string) error {
	if err := validateDescription(description); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	page := r.pageByIDLocked(pageID)
	if page == nil {
		return nil
	}

	now := time.Now().UnixMilli()
	patch, err := json.Marshal(map[string]interface{}{
		"description": strings.TrimSpace(description),
		"updatedAt":   now,
	})
	if err != nil {
		return err
	}

	page.Description = strings.TrimSpace(description)
	page.UpdatedAt = now

	if err := r.store.Update(ctx, domain.CollectionCustomPages, pageID, patch); err != nil {
		r.logger.WithError(err).WithField("page_id", pageID).Error("ページ説明の更新に失敗")
		if lerr := r.loadLocked(ctx); lerr != nil {
			r.logger.WithError(lerr).Error("ページ再読込に失敗")
		}
		return ErrPageSaveFailed
	}
	return nil
}

// DeletePage removes the custom page, handles the ideas still assigned to it
// per the orphan policy, deletes the page record and drops the name from the
// persisted order. Unknown page ids are a silent no-op. On failure the page
// is restored locally and the idea set reloaded to resynchronize.
func (r *PageRegistry) DeletePage(ctx context.Context, pageID string, policy domain.OrphanPolicy) error {
	if !policy.IsValid() {
		return ErrInvalidOrphanPolicy
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	page := r.pageByIDLocked(pageID)
	if page == nil {
		return nil
	}
	removed := *page

	r.removePageLocked(pageID)

	// 失敗時はページをメモリ上に戻し、アイデア側は再読込で整合させる
	fail := func(err error, msg string) error {
		r.logger.WithError(err).WithField("page_id", pageID).Error(msg)
		if r.pageByIDLocked(pageID) == nil {
			r.pages = append(r.pages, removed)
		}
		if lerr := r.ideas.Load(ctx); lerr != nil {
			r.logger.WithError(lerr).Error("アイデア再読込に失敗")
		}
		return ErrPageSaveFailed
	}

	if err := r.ideas.HandleOrphans(ctx, removed.Category, removed.Name, policy); err != nil {
		return fail(err, "削除ページのアイデア処理に失敗")
	}

	if err := r.store.Delete(ctx, domain.CollectionCustomPages, pageID); err != nil {
		return fail(err, "ページの削除に失敗")
	}

	if stored, ok := r.orders[removed.Category]; ok {
		order := make([]string, 0, len(stored))
		for _, n := range stored {
			if n != removed.Name {
				order = append(order, n)
			}
		}
		if err := r.persistOrderLocked(ctx, removed.Category, order); err != nil {
			return fail(err, "ページ順序の更新に失敗")
		}
	}

	r.logger.WithFields(logrus.Fields{
		"page_id": pageID,
		"name":    removed.Name,
		"policy":  policy,
	}).Info("カスタムページを削除しました")
	return nil
}

// ReorderPages sets the persisted display order of the category wholesale;
// on failure the previous order is restored.
func (r *PageRegistry) ReorderPages(ctx context.Context, category domain.Category, names []string) error {
	if !category.IsValid() {
		return ErrInvalidCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, hadPrevious := r.orders[category]

	err := applyOptimistic(ctx,
		func() { r.orders[category] = append([]string{}, names...) },
		func(ctx context.Context) error {
			return r.setOrderRecord(ctx, category, names)
		},
		func() {
			if hadPrevious {
				r.orders[category] = previous
			} else {
				delete(r.orders, category)
			}
		},
	)
	if err != nil {
		r.logger.WithError(err).WithField("category", category).Error("ページ順序の保存に失敗")
		return ErrPageSaveFailed
	}
	return nil
}

func (r *PageRegistry) persistOrderLocked(ctx context.Context, category domain.Category, names []string) error {
	r.orders[category] = append([]string{}, names...)
	return r.setOrderRecord(ctx, category, names)
}

func (r *PageRegistry) setOrderRecord(ctx context.Context, category domain.Category, names []string) error {
	data, err := json.Marshal(domain.PageOrder{Category: category, Names: names})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, domain.CollectionPageOrders, category.String(), data)
}

func (r *PageRegistry) reloadAllLocked(ctx context.Context) {
	if err := r.loadLocked(ctx); err != nil {
		r.logger.WithError(err).Error("ページ再読込に失敗")
	}
	if err := r.ideas.Load(ctx); err != nil {
		r.logger.WithError(err).Error("アイデア再読込に失敗")
	}
}

func (r *PageRegistry) pageByIDLocked(id string) *domain.CustomPage {
	for i := range r.pages {
		if r.pages[i].ID == id {
			return &r.pages[i]
		}
	}
	return nil
}

func (r *PageRegistry) removePageLocked(id string) {
	for i := range r.pages {
		if r.pages[i].ID == id {
			r.pages = append(r.pages[:i], r.pages[i+1:]...)
			return
		}
	}
}
