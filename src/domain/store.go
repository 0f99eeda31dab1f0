package domain

import (
	"context"
	"errors"
	"io"
)

// Logical collections used by the board.
const (
	CollectionIdeas       = "ideas"
	CollectionCustomPages = "custom_pages"
	CollectionPageOrders  = "page_orders"
	CollectionDocuments   = "documents"
	CollectionTodos       = "todos"
	CollectionIdeaHopper  = "idea_hopper"
	CollectionCanon       = "consultant_canon"
	CollectionSettings    = "consultant_settings"
	CollectionChecklist   = "checklist_state"
)

// ErrRecordNotFound is returned by Store.Update when the target record is absent.
var ErrRecordNotFound = errors.New("record not found")

// Record represents one stored document tagged with its identity
type Record struct {
	ID   string
	Data []byte
}

// BatchOpKind represents the kind of a batch-write operation
type BatchOpKind string

const (
	BatchSet    BatchOpKind = "set"
	BatchUpdate BatchOpKind = "update"
	BatchDelete BatchOpKind = "delete"
)

// BatchOp represents one operation inside an atomic batch write
type BatchOp struct {
	ID      string
	Kind    BatchOpKind
	Payload []byte // full record for set, partial fields for update, nil for delete
}

// Store defines the document-store contract the board runs against.
// 任意のドキュメントストア（Postgres/JSONB、インメモリ等）で実装可能
type Store interface {
	// GetAll returns every record in a named collection.
	GetAll(ctx context.Context, collection string) ([]Record, error)
	// Set upserts a full record.
	Set(ctx context.Context, collection, id string, data []byte) error
	// Update merges fields into an existing record; fails if absent.
	Update(ctx context.Context, collection, id string, fields []byte) error
	// Delete removes a record; idempotent.
	Delete(ctx context.Context, collection, id string) error
	// BatchWrite applies a list of set/update/delete operations atomically.
	BatchWrite(ctx context.Context, collection string, ops []BatchOp) error
}

// BlobStore defines the object-store contract for uploaded files
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
