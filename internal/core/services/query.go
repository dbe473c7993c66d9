package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
	"github.com/custodia-labs/csvrag/internal/core/ports/driving"
	"github.com/custodia-labs/csvrag/internal/runtime"
)

const (
	analystInstructions = "You are a helpful assistant that analyzes CSV data. " +
		"Provide clear, concise answers and include relevant statistics when available."
	directAnswerInstructions = " Be specific and directly address the question."
)

// PromptStyle selects the system instructions and the metadata label of a prompt
type PromptStyle struct {
	Instructions  string
	MetadataLabel string
}

var (
	// DirectPrompt is used for complete answers
	DirectPrompt = PromptStyle{
		Instructions:  analystInstructions + directAnswerInstructions,
		MetadataLabel: "CSV Metadata",
	}
	// StreamPrompt is used for streamed answers
	StreamPrompt = PromptStyle{
		Instructions:  analystInstructions,
		MetadataLabel: "Metadata",
	}
)

var completionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "csvrag_completions_total",
	Help: "Total number of completion requests by mode and outcome.",
}, []string{"mode", "outcome"})

// ErrCompletionUnavailable is returned when no completion service is configured
var ErrCompletionUnavailable = fmt.Errorf("%w: completion service not configured", domain.ErrUpstream)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// queryService implements the QueryService interface
type queryService struct {
	store    driven.FileStore
	services *runtime.Services // Dynamic completion service
	logger   *slog.Logger
}

// NewQueryService creates a new QueryService.
// The completion service is resolved per request via runtime.Services.
func NewQueryService(
	store driven.FileStore,
	services *runtime.Services,
	logger *slog.Logger,
) driving.QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{
		store:    store,
		services: services,
		logger:   logger,
	}
}

// Answer asks the completion service about a stored file and returns the full answer
func (s *queryService) Answer(ctx context.Context, fileID, question string) (string, error) {
	doc, completion, err := s.prepare(ctx, fileID, question)
	if err != nil {
		return "", err
	}

	messages, err := BuildPrompt(doc, question, DirectPrompt)
	if err != nil {
		return "", err
	}

	answer, err := completion.Complete(ctx, messages)
	if err != nil {
		completionsTotal.WithLabelValues("complete", "error").Inc()
		s.logger.Error("completion failed", "file_id", fileID, "model", completion.Model(), "error", err)
		return "", upstreamError(err)
	}

	completionsTotal.WithLabelValues("complete", "ok").Inc()
	s.logger.Info("query answered", "file_id", fileID, "model", completion.Model())
	return answer, nil
}

// AnswerStream asks the completion service about a stored file and streams the answer
func (s *queryService) AnswerStream(ctx context.Context, fileID, question string) (domain.TokenStream, error) {
	doc, completion, err := s.prepare(ctx, fileID, question)
	if err != nil {
		return nil, err
	}

	messages, err := BuildPrompt(doc, question, StreamPrompt)
	if err != nil {
		return nil, err
	}

	stream, err := completion.Stream(ctx, messages)
	if err != nil {
		completionsTotal.WithLabelValues("stream", "error").Inc()
		s.logger.Error("completion stream failed", "file_id", fileID, "model", completion.Model(), "error", err)
		return nil, upstreamError(err)
	}

	s.logger.Info("query stream opened", "file_id", fileID, "model", completion.Model())
	return &observedStream{inner: stream}, nil
}

// prepare validates the question and loads the document and the completion service
func (s *queryService) prepare(ctx context.Context, fileID, question string) (*domain.FileDocument, driven.CompletionService, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil, fmt.Errorf("%w: query is required", domain.ErrBadRequest)
	}

	doc, err := s.store.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	completion := s.services.CompletionService()
	if completion == nil {
		completionsTotal.WithLabelValues("none", "unavailable").Inc()
		return nil, nil, ErrCompletionUnavailable
	}

	return doc, completion, nil
}

// BuildPrompt assembles the chat messages sent for a question about doc
func BuildPrompt(doc *domain.FileDocument, question string, style PromptStyle) ([]domain.ChatMessage, error) {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	sample, err := json.Marshal(doc.Metadata.SampleRows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample rows: %w", err)
	}

	background := fmt.Sprintf("CSV Summary: %s\n%s: %s\nCSV Sample Content (first few rows): %s",
		doc.Summary, style.MetadataLabel, metadata, sample)

	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: style.Instructions},
		{Role: domain.ChatRoleUser, Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", background, question)},
	}, nil
}

func upstreamError(err error) error {
	if errors.Is(err, domain.ErrUpstream) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
}

// observedStream records the outcome of a streamed completion once it ends
type observedStream struct {
	inner   domain.TokenStream
	outcome string
}

func (o *observedStream) Next() (string, error) {
	chunk, err := o.inner.Next()
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		o.finish("ok")
	default:
		o.finish("error")
		return "", upstreamError(err)
	}
	return chunk, err
}

func (o *observedStream) Close() error {
	o.finish("cancelled")
	return o.inner.Close()
}

func (o *observedStream) finish(outcome string) {
	if o.outcome != "" {
		return
	}
	o.outcome = outcome
	completionsTotal.WithLabelValues("stream", outcome).Inc()
}
