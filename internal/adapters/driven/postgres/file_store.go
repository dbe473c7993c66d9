package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*FileStore)(nil)

// FileStore implements driven.FileStore using PostgreSQL
type FileStore struct {
	db *DB
}

// NewFileStore creates a new FileStore
func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Create inserts a new file with a generated UUID
func (s *FileStore) Create(ctx context.Context, doc *domain.FileDocument) (string, error) {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode metadata: %v", domain.ErrStore, err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO files (id, file_name, content, metadata, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		doc.FileName,
		doc.Content,
		metadataJSON,
		doc.Summary,
		doc.Metadata.UploadDate,
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert file: %v", domain.ErrStore, err)
	}
	return id, nil
}

// List returns the ID and file name of every stored file, oldest first
func (s *FileStore) List(ctx context.Context) ([]*domain.FileSummary, error) {
	query := `
		SELECT id, file_name
		FROM files
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list files: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	files := make([]*domain.FileSummary, 0)
	for rows.Next() {
		var f domain.FileSummary
		if err := rows.Scan(&f.ID, &f.FileName); err != nil {
			return nil, fmt.Errorf("%w: failed to scan file: %v", domain.ErrStore, err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate files: %v", domain.ErrStore, err)
	}

	return files, nil
}

// Get retrieves a file by ID
func (s *FileStore) Get(ctx context.Context, id string) (*domain.FileDocument, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, file_name, content, metadata, summary
		FROM files
		WHERE id = $1
	`

	var doc domain.FileDocument
	var metadataJSON []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.FileName,
		&doc.Content,
		&metadataJSON,
		&doc.Summary,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get file: %v", domain.ErrStore, err)
	}

	dec := json.NewDecoder(bytes.NewReader(metadataJSON))
	dec.UseNumber()
	if err := dec.Decode(&doc.Metadata); err != nil {
		return nil, fmt.Errorf("%w: failed to decode metadata: %v", domain.ErrStore, err)
	}
	doc.Metadata.RestoreIntegers()

	return &doc, nil
}

// Delete removes a file by ID
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete file: %v", domain.ErrStore, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: check rows affected: %v", domain.ErrStore, err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks if the database is reachable
func (s *FileStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the connection pool
func (s *FileStore) Close() error {
	return s.db.Close()
}

// validID reports whether id can be a key of the files table.
// Postgres rejects malformed UUIDs with an error, which must surface as not found.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
