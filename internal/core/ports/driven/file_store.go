package driven

import (
	"context"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// FileStore persists uploaded CSV files (MongoDB, PostgreSQL or Redis)
type FileStore interface {
	// Create inserts a new document and returns its generated ID.
	// It never overwrites an existing document.
	Create(ctx context.Context, doc *domain.FileDocument) (string, error)

	// List returns the ID and file name of every stored document
	List(ctx context.Context) ([]*domain.FileSummary, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound for unknown or malformed IDs.
	Get(ctx context.Context, id string) (*domain.FileDocument, error)

	// Delete removes a document permanently.
	// Returns domain.ErrNotFound for unknown or malformed IDs, including a second delete.
	Delete(ctx context.Context, id string) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}
