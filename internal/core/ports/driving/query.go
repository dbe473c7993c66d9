package driving

import (
	"context"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// QueryService answers natural-language questions about stored files
type QueryService interface {
	// Answer returns the complete answer to question about the file
	Answer(ctx context.Context, fileID, question string) (string, error)

	// AnswerStream returns the answer as a stream of text chunks.
	// The caller must Close the stream.
	AnswerStream(ctx context.Context, fileID, question string) (domain.TokenStream, error)
}
