package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*FileStore)(nil)

const (
	// Key prefixes for Redis
	filePrefix = "file:"
	// filesIndex is a sorted set of file IDs scored by upload time
	filesIndex = "files"
)

// FileStore implements driven.FileStore using Redis.
// Each file is a JSON string under file:<id>; the files sorted set keeps upload order.
type FileStore struct {
	client *redis.Client
}

// NewFileStore creates a new Redis-backed FileStore
func NewFileStore(client *redis.Client) *FileStore {
	return &FileStore{client: client}
}

// Connect parses a redis:// URL and verifies the server is reachable
func Connect(ctx context.Context, url string) (*FileStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %v", domain.ErrStore, err)
	}

	store := NewFileStore(redis.NewClient(opts))
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Create stores a new file under a generated UUID
func (s *FileStore) Create(ctx context.Context, doc *domain.FileDocument) (string, error) {
	id := uuid.NewString()

	stored := *doc
	stored.ID = id
	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal file: %v", domain.ErrStore, err)
	}

	// Use a transaction so the document and its index entry appear together
	pipe := s.client.TxPipeline()
	pipe.SetNX(ctx, filePrefix+id, data, 0)
	pipe.ZAdd(ctx, filesIndex, redis.Z{
		Score:  float64(doc.Metadata.UploadDate.UnixNano()),
		Member: id,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: failed to save file: %v", domain.ErrStore, err)
	}

	return id, nil
}

// List returns every stored file in upload order
func (s *FileStore) List(ctx context.Context) ([]*domain.FileSummary, error) {
	ids, err := s.client.ZRange(ctx, filesIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list files: %v", domain.ErrStore, err)
	}

	files := make([]*domain.FileSummary, 0, len(ids))
	if len(ids) == 0 {
		return files, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = filePrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load files: %v", domain.ErrStore, err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document, left behind by an interrupted delete
			continue
		}
		var summary domain.FileSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal file: %v", domain.ErrStore, err)
		}
		summary.ID = ids[i]
		files = append(files, &summary)
	}

	return files, nil
}

// Get retrieves a file by ID
func (s *FileStore) Get(ctx context.Context, id string) (*domain.FileDocument, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}

	data, err := s.client.Get(ctx, filePrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get file: %v", domain.ErrStore, err)
	}

	var doc domain.FileDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal file: %v", domain.ErrStore, err)
	}
	doc.ID = id
	doc.Metadata.UploadDate = doc.Metadata.UploadDate.UTC()
	doc.Metadata.RestoreIntegers()

	return &doc, nil
}

// Delete removes a file and its index entry
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, filePrefix+id)
	pipe.ZRem(ctx, filesIndex, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete file: %v", domain.ErrStore, err)
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *FileStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return nil
}

// Close closes the Redis client
func (s *FileStore) Close() error {
	return s.client.Close()
}
