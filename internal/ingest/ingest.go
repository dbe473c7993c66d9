package ingest

import (
	"fmt"
	"time"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// Ingest parses raw CSV text and assembles the document to store for fileName.
// The returned document has no ID; the store assigns one.
// The only error is a malformed-CSV error wrapping domain.ErrParse.
func Ingest(raw, fileName string, uploadedAt time.Time) (*domain.FileDocument, error) {
	frame, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	content, err := frame.CSV()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	metadata := BuildMetadata(frame, fileName, uploadedAt)

	return &domain.FileDocument{
		FileName: fileName,
		Content:  content,
		Metadata: metadata,
		Summary:  Summarize(&metadata),
	}, nil
}
