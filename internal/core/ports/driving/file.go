package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// FileService ingests CSV files and manages the stored documents
type FileService interface {
	// Upload parses content read from r and stores it under fileName.
	// fileName must end in ".csv".
	Upload(ctx context.Context, fileName string, r io.Reader) (string, error)

	// UploadFromPath reads a CSV file from the server's disk or project directory
	UploadFromPath(ctx context.Context, src domain.UploadSource) (string, error)

	// List returns the ID and file name of every stored file
	List(ctx context.Context) ([]*domain.FileSummary, error)

	// Get retrieves a stored file with its metadata
	Get(ctx context.Context, id string) (*domain.FileDocument, error)

	// Delete removes a stored file
	Delete(ctx context.Context, id string) error
}
