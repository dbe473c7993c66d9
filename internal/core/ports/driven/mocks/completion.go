package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Ensure MockCompletionService implements CompletionService
var _ driven.CompletionService = (*MockCompletionService)(nil)

// MockCompletionService returns canned completions and records the prompts it received
type MockCompletionService struct {
	mu sync.Mutex

	// Response is returned by Complete and split into Chunks by Stream when Chunks is empty
	Response string
	Chunks   []string
	Err      error
	PingErr  error

	Calls  [][]domain.ChatMessage
	Closed bool
}

// NewMockCompletionService creates a mock that answers every prompt with response
func NewMockCompletionService(response string) *MockCompletionService {
	return &MockCompletionService{Response: response}
}

func (m *MockCompletionService) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	m.record(messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockCompletionService) Stream(ctx context.Context, messages []domain.ChatMessage) (domain.TokenStream, error) {
	m.record(messages)
	if m.Err != nil {
		return nil, m.Err
	}
	chunks := m.Chunks
	if len(chunks) == 0 {
		chunks = []string{m.Response}
	}
	return NewSliceStream(ctx, chunks...), nil
}

func (m *MockCompletionService) Model() string {
	return "mock-model"
}

func (m *MockCompletionService) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockCompletionService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// LastPrompt returns the messages of the most recent call
func (m *MockCompletionService) LastPrompt() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

func (m *MockCompletionService) record(messages []domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, messages)
}

// SliceStream is a TokenStream over a fixed list of chunks
type SliceStream struct {
	ctx    context.Context
	chunks []string
	pos    int
	closed bool
}

// NewSliceStream creates a TokenStream yielding chunks in order
func NewSliceStream(ctx context.Context, chunks ...string) *SliceStream {
	return &SliceStream{ctx: ctx, chunks: chunks}
}

func (s *SliceStream) Next() (string, error) {
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// IsClosed reports whether Close was called
func (s *SliceStream) IsClosed() bool {
	return s.closed
}
