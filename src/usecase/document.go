package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ria-board/src/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrDocumentNotFound = errors.New("document not found")

// UploadDocumentRequest represents an incoming file upload with optional metadata
type UploadDocumentRequest struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
	Page        string
	Section     string
	Tags        []string
	Summary     string
}

// DocumentLibrary caches document metadata and coordinates the blob store
// with the document store.
type DocumentLibrary struct {
	mu     sync.Mutex
	store  domain.Store
	blobs  domain.BlobStore
	logger *logrus.Logger
	docs   []domain.DocumentMeta
	loaded bool
}

// NewDocumentLibrary creates a new document library
func NewDocumentLibrary(store domain.Store, blobs domain.BlobStore, logger *logrus.Logger) *DocumentLibrary {
	return &DocumentLibrary{store: store, blobs: blobs, logger: logger}
}

// Load fetches all document metadata from the remote store.
func (l *DocumentLibrary) Load(ctx context.Context) error {
	records, err := l.store.GetAll(ctx, domain.CollectionDocuments)
	if err != nil {
		l.logger.WithError(err).Error("ドキュメントの読み込みに失敗")
		l.mu.Lock()
		l.loaded = false
		l.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	docs := make([]domain.DocumentMeta, 0, len(records))
	for _, rec := range records {
		var doc domain.DocumentMeta
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			l.logger.WithError(err).WithField("id", rec.ID).Warn("不正なドキュメントレコードをスキップ")
			continue
		}
		doc.ID = rec.ID
		if doc.LinkedCards == nil {
			doc.LinkedCards = []string{}
		}
		docs = append(docs, doc)
	}

	l.mu.Lock()
	l.docs = docs
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (l *DocumentLibrary) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Documents returns cached documents newest first, filtered by the optional
// search query against filename and tags.
func (l *DocumentLibrary) Documents(query string) []domain.DocumentMeta {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.DocumentMeta
	for _, doc := range l.docs {
		if q == "" || matchesDocument(doc, q) {
			out = append(out, doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt > out[j].UploadedAt })
	return out
}

func matchesDocument(doc domain.DocumentMeta, q string) bool {
	if strings.Contains(strings.ToLower(doc.Filename), q) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// DocumentByID returns the cached document with the given id.
func (l *DocumentLibrary) DocumentByID(id string) (*domain.DocumentMeta, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.docs {
		if l.docs[i].ID == id {
			doc := l.docs[i]
			return &doc, nil
		}
	}
	return nil, ErrDocumentNotFound
}

// RecentTags returns the distinct tags of the most recently uploaded
// documents, up to the given limit.
func (l *DocumentLibrary) RecentTags(limit int) []string {
	if limit <= 0 {
		limit = 8
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ordered := make([]domain.DocumentMeta, len(l.docs))
	copy(ordered, l.docs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].UploadedAt > ordered[j].UploadedAt })

	tags := []string{}
	for _, doc := range ordered {
		for _, tag := range doc.Tags {
			if !contains(tags, tag) {
				tags = append(tags, tag)
			}
			if len(tags) >= limit {
				return tags
			}
		}
	}
	return tags
}

// Upload stores the file in the blob store, then records its metadata.
// ブロブ保存後のメタデータ書き込み失敗時はブロブを残さない
func (l *DocumentLibrary) Upload(ctx context.Context, req UploadDocumentRequest) (*domain.DocumentMeta, error) {
	id := uuid.NewString()
	key := blobKey(id, req.Filename)

	if err := l.blobs.Put(ctx, key, req.Body, req.Size, req.ContentType); err != nil {
		l.logger.WithError(err).WithField("filename", req.Filename).Error("ファイルのアップロードに失敗")
		return nil, err
	}

	url, err := l.blobs.URL(ctx, key)
	if err != nil {
		l.logger.WithError(err).WithField("key", key).Error("ダウンロードURLの取得に失敗")
		return nil, err
	}

	doc := domain.DocumentMeta{
		ID:          id,
		Filename:    req.Filename,
		FileType:    fileExtension(req.Filename),
		Size:        req.Size,
		UploadedAt:  time.Now().UnixMilli(),
		StorageURL:  url,
		LinkedCards: []string{},
		Page:        req.Page,
		Section:     req.Section,
		Tags:        req.Tags,
		Summary:     req.Summary,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	if err := l.store.Set(ctx, domain.CollectionDocuments, doc.ID, data); err != nil {
		l.logger.WithError(err).WithField("doc_id", doc.ID).Error("ドキュメントメタデータの保存に失敗")
		if derr := l.blobs.Delete(ctx, key); derr != nil {
			l.logger.WithError(derr).WithField("key", key).Warn("孤立ブロブの削除に失敗")
		}
		return nil, err
	}

	l.mu.Lock()
	l.docs = append(l.docs, doc)
	l.mu.Unlock()

	l.logger.WithFields(logrus.Fields{
		"doc_id":   doc.ID,
		"filename": doc.Filename,
		"size":     doc.Size,
	}).Info("ドキュメントをアップロードしました")
	return &doc, nil
}

// Delete removes the document metadata optimistically; the blob deletion is
// best-effort, matching the original behavior.
func (l *DocumentLibrary) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(id)
	if idx < 0 {
		return nil
	}
	removed := l.docs[idx]

	err := applyOptimistic(ctx,
		func() { l.docs = append(l.docs[:idx], l.docs[idx+1:]...) },
		func(ctx context.Context) error {
			if err := l.blobs.Delete(ctx, blobKey(removed.ID, removed.Filename)); err != nil {
				l.logger.WithError(err).WithField("doc_id", id).Warn("ブロブの削除に失敗（継続）")
			}
			return l.store.Delete(ctx, domain.CollectionDocuments, id)
		},
		func() { l.docs = append(l.docs, removed) },
	)
	if err != nil {
		l.logger.WithError(err).WithField("doc_id", id).Error("ドキュメントの削除に失敗")
		return err
	}
	return nil
}

// ToggleCanonical flips whether the document is part of the assistant's
// knowledge base.
func (l *DocumentLibrary) ToggleCanonical(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(id)
	if idx < 0 {
		return nil
	}
	newValue := !l.docs[idx].IsCanonical

	patch, err := json.Marshal(map[string]bool{"isCanonical": newValue})
	if err != nil {
		return err
	}

	err = applyOptimistic(ctx,
		func() { l.docs[idx].IsCanonical = newValue },
		func(ctx context.Context) error {
			return l.store.Update(ctx, domain.CollectionDocuments, id, patch)
		},
		func() {
			if i := l.indexLocked(id); i >= 0 {
				l.docs[i].IsCanonical = !newValue
			}
		},
	)
	if err != nil {
		l.logger.WithError(err).WithField("doc_id", id).Error("カノニカル状態の更新に失敗")
		return err
	}
	return nil
}

// LinkToCard attaches the document to a board card.
func (l *DocumentLibrary) LinkToCard(ctx context.Context, docID, cardID string) error {
	return l.setLink(ctx, docID, cardID, true)
}

// UnlinkFromCard detaches the document from a board card.
func (l *DocumentLibrary) UnlinkFromCard(ctx context.Context, docID, cardID string) error {
	return l.setLink(ctx, docID, cardID, false)
}

func (l *DocumentLibrary) setLink(ctx context.Context, docID, cardID string, link bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(docID)
	if idx < 0 {
		return nil
	}
	snapshot := append([]string{}, l.docs[idx].LinkedCards...)

	linked := append([]string{}, snapshot...)
	if link {
		if !contains(linked, cardID) {
			linked = append(linked, cardID)
		}
	} else {
		filtered := linked[:0]
		for _, id := range linked {
			if id != cardID {
				filtered = append(filtered, id)
			}
		}
		linked = filtered
	}

	patch, err := json.Marshal(map[string][]string{"linkedCards": linked})
	if err != nil {
		return err
	}

	err = applyOptimistic(ctx,
		func() { l.docs[idx].LinkedCards = linked },
		func(ctx context.Context) error {
			return l.store.Update(ctx, domain.CollectionDocuments, docID, patch)
		},
		func() {
			if i := l.indexLocked(docID); i >= 0 {
				l.docs[i].LinkedCards = snapshot
			}
		},
	)
	if err != nil {
		l.logger.WithError(err).WithField("doc_id", docID).Error("ドキュメントリンクの更新に失敗")
		return err
	}
	return nil
}

func (l *DocumentLibrary) indexLocked(id string) int {
	for i := range l.docs {
		if l.docs[i].ID == id {
			return i
		}
	}
	return -1
}

func blobKey(id, filename string) string {
	return fmt.Sprintf("documents/%s-%s", id, filename)
}

func fileExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}
