package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Ensure MockFileStore implements FileStore
var _ driven.FileStore = (*MockFileStore)(nil)

// MockFileStore is an in-memory implementation of FileStore for testing
type MockFileStore struct {
	mu    sync.RWMutex
	files map[string]*domain.FileDocument
	order []string

	// Err, when set, is returned by every operation
	Err error
}

// NewMockFileStore creates a new MockFileStore
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		files: make(map[string]*domain.FileDocument),
	}
}

func (m *MockFileStore) Create(ctx context.Context, doc *domain.FileDocument) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	stored := *doc
	stored.ID = id
	m.files[id] = &stored
	m.order = append(m.order, id)
	return id, nil
}

func (m *MockFileStore) List(ctx context.Context) ([]*domain.FileSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.FileSummary, 0, len(m.order))
	for _, id := range m.order {
		doc, ok := m.files[id]
		if !ok {
			continue
		}
		result = append(result, &domain.FileSummary{ID: id, FileName: doc.FileName})
	}
	return result, nil
}

func (m *MockFileStore) Get(ctx context.Context, id string) (*domain.FileDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockFileStore) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockFileStore) Ping(ctx context.Context) error {
	return m.Err
}

func (m *MockFileStore) Close() error {
	return nil
}

// Len returns the number of stored documents
func (m *MockFileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
