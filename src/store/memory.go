package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ria-board/src/domain"
)

// MemoryStore is an in-process implementation of domain.Store used for tests
// and local development without a database.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte

	// FailureHook, when set, is consulted before every operation and lets
	// tests simulate remote store failures.
	FailureHook func(op, collection string) error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) fail(op, collection string) error {
	if s.FailureHook != nil {
		return s.FailureHook(op, collection)
	}
	return nil
}

// GetAll returns every record in a named collection.
func (s *MemoryStore) GetAll(ctx context.Context, collection string) ([]domain.Record, error) {
	if err := s.fail("getAll", collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.Record, 0, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		records = append(records, domain.Record{ID: id, Data: data})
	}
	// 取得順を安定させる
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Set upserts a full record.
func (s *MemoryStore) Set(ctx context.Context, collection, id string, data []byte) error {
	if err := s.fail("set", collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(collection, id, data)
	return nil
}

// Update merges fields into an existing record; fails if absent.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields []byte) error {
	if err := s.fail("update", collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(collection, id, fields)
}

// Delete removes a record; idempotent.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.fail("delete", collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// BatchWrite applies a list of set/update/delete operations atomically.
func (s *MemoryStore) BatchWrite(ctx context.Context, collection string, ops []domain.BatchOp) error {
	if err := s.fail("batchWrite", collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 先に全opを検証してから適用する（原子性の保証）
	for _, op := range ops {
		if op.Kind == domain.BatchUpdate {
			if _, ok := s.collections[collection][op.ID]; !ok {
				return fmt.Errorf("batch update: %s/%s: %w", collection, op.ID, domain.ErrRecordNotFound)
			}
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case domain.BatchSet:
			s.setLocked(collection, op.ID, op.Payload)
		case domain.BatchUpdate:
			if err := s.updateLocked(collection, op.ID, op.Payload); err != nil {
				return err
			}
		case domain.BatchDelete:
			delete(s.collections[collection], op.ID)
		}
	}
	return nil
}

func (s *MemoryStore) setLocked(collection, id string, data []byte) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = append([]byte(nil), data...)
}

func (s *MemoryStore) updateLocked(collection, id string, fields []byte) error {
	existing, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrRecordNotFound)
	}

	merged, err := mergeJSON(existing, fields)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	s.collections[collection][id] = merged
	return nil
}
