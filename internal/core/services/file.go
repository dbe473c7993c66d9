package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
	"github.com/custodia-labs/csvrag/internal/core/ports/driving"
	"github.com/custodia-labs/csvrag/internal/ingest"
)

// DefaultMaxUploadBytes caps the size of a single uploaded file
const DefaultMaxUploadBytes int64 = 32 << 20

var uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "csvrag_uploads_total",
	Help: "Total number of CSV uploads by outcome.",
}, []string{"outcome"})

// Ensure fileService implements FileService
var _ driving.FileService = (*fileService)(nil)

// FileServiceConfig holds the dependencies of the file service.
type FileServiceConfig struct {
	Store          driven.FileStore
	Logger         *slog.Logger
	Now            func() time.Time // Clock used for upload_date (default: time.Now)
	MaxUploadBytes int64            // Upload size cap (default: 32 MiB)
	ProjectDir     string           // Root for "project" path uploads (default: ".")
}

// fileService implements the FileService interface
type fileService struct {
	store      driven.FileStore
	logger     *slog.Logger
	now        func() time.Time
	maxBytes   int64
	projectDir string
}

// NewFileService creates a new FileService
func NewFileService(cfg FileServiceConfig) driving.FileService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	projectDir := cfg.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	return &fileService{
		store:      cfg.Store,
		logger:     logger,
		now:        now,
		maxBytes:   maxBytes,
		projectDir: projectDir,
	}
}

// Upload parses the CSV read from r and stores it under fileName
func (s *fileService) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if err := checkCSVName(fileName); err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: failed to read upload: %w", domain.ErrBadRequest, err)
	}

	return s.ingestAndStore(ctx, fileName, data)
}

// UploadFromPath reads a CSV file from the server's disk or the project directory
func (s *fileService) UploadFromPath(ctx context.Context, src domain.UploadSource) (string, error) {
	path, err := s.resolvePath(src)
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	name := filepath.Base(path)
	if err := checkCSVName(name); err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s", domain.ErrNotFound, src.FilePath)
		}
		return "", fmt.Errorf("%w: failed to open %s: %v", domain.ErrBadRequest, src.FilePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: %s is not a regular file", domain.ErrBadRequest, src.FilePath)
	}

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: failed to read %s: %v", domain.ErrBadRequest, src.FilePath, err)
	}

	s.logger.Debug("read csv from path", "source_type", src.SourceType, "path", path, "bytes", len(data))
	return s.ingestAndStore(ctx, name, data)
}

// ingestAndStore ingests raw bytes and persists the resulting document
func (s *fileService) ingestAndStore(ctx context.Context, fileName string, data []byte) (string, error) {
	if int64(len(data)) > s.maxBytes {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrBadRequest, s.maxBytes)
	}

	doc, err := ingest.Ingest(string(data), fileName, s.now())
	if err != nil {
		uploadsTotal.WithLabelValues("parse_error").Inc()
		s.logger.Warn("failed to parse csv", "file_name", fileName, "error", err)
		return "", err
	}

	id, err := s.store.Create(ctx, doc)
	if err != nil {
		uploadsTotal.WithLabelValues("store_error").Inc()
		s.logger.Error("failed to store csv", "file_name", fileName, "error", err)
		return "", err
	}

	uploadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("csv uploaded",
		"file_id", id,
		"file_name", fileName,
		"rows", doc.Metadata.RowCount,
		"columns", doc.Metadata.ColumnCount,
	)
	return id, nil
}

// resolvePath validates an upload source and returns the file path to read
func (s *fileService) resolvePath(src domain.UploadSource) (string, error) {
	if src.SourceType != domain.SourceTypeDisk && src.SourceType != domain.SourceTypeProject {
		return "", fmt.Errorf("%w: invalid source type %q", domain.ErrBadRequest, src.SourceType)
	}
	if strings.TrimSpace(src.FilePath) == "" {
		return "", fmt.Errorf("%w: file path is required", domain.ErrBadRequest)
	}

	switch src.SourceType {
	case domain.SourceTypeDisk:
		return filepath.Clean(src.FilePath), nil
	default:
		root, err := filepath.Abs(s.projectDir)
		if err != nil {
			return "", fmt.Errorf("%w: invalid project directory: %v", domain.ErrBadRequest, err)
		}
		path := filepath.Join(root, src.FilePath)
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: path escapes the project directory", domain.ErrBadRequest)
		}
		return path, nil
	}
}

// List returns every stored file
func (s *fileService) List(ctx context.Context) ([]*domain.FileSummary, error) {
	return s.store.List(ctx)
}

// Get retrieves a stored file with its metadata
func (s *fileService) Get(ctx context.Context, id string) (*domain.FileDocument, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a stored file
func (s *fileService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("csv deleted", "file_id", id)
	return nil
}

func checkCSVName(name string) error {
	if !strings.HasSuffix(name, ".csv") {
		return fmt.Errorf("%w: only CSV files are allowed", domain.ErrBadRequest)
	}
	return nil
}
