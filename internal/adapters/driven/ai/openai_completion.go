package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Ensure OpenAICompletion implements CompletionService
var _ driven.CompletionService = (*OpenAICompletion)(nil)

// OpenAICompletion implements CompletionService using the chat-completions API
type OpenAICompletion struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	// streamClient has no overall timeout; streams end by EOF, Close or ctx
	streamClient *http.Client
}

// NewOpenAICompletion creates a new OpenAI completion service
func NewOpenAICompletion(apiKey, model, baseURL string) (driven.CompletionService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if baseURL == "" {
		baseURL = domain.DefaultOpenAIBaseURL
	}
	return newCompletion(apiKey, model, baseURL)
}

func newCompletion(apiKey, model, baseURL string) (*OpenAICompletion, error) {
	if model == "" {
		model = domain.DefaultLLMModel
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &OpenAICompletion{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   120 * time.Second,
			Transport: transport,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
	}, nil
}

// chatRequest is the request body for the chat-completions API
type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream,omitempty"`
}

// apiError is the error object returned by the API
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("OpenAI API error: %s (type: %s, code: %v)", e.Message, e.Type, e.Code)
}

// chatResponse is the response from the chat-completions API
type chatResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string    `json:"model"`
	Error *apiError `json:"error,omitempty"`
}

// chatChunk is one server-sent event of a streamed completion
type chatChunk struct {
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// Complete returns the full generated text
func (c *OpenAICompletion) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	resp, err := c.doRequest(ctx, c.client, chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstream, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", domain.ErrUpstream, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, chatResp.Error)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrUpstream)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Stream returns generated text incrementally as it arrives
func (c *OpenAICompletion) Stream(ctx context.Context, messages []domain.ChatMessage) (domain.TokenStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	resp, err := c.doRequest(ctx, c.streamClient, chatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		cancel()
		return nil, err
	}

	return &sseStream{
		ctx:    ctx,
		cancel: cancel,
		body:   resp.Body,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// Model returns the model name being used
func (c *OpenAICompletion) Model() string {
	return c.model
}

// Ping verifies the completion service is available by listing models
func (c *OpenAICompletion) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: API returned status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the completion service
func (c *OpenAICompletion) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *OpenAICompletion) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// doRequest posts to the chat-completions endpoint and returns a 2xx response.
// The caller must close the response body.
func (c *OpenAICompletion) doRequest(ctx context.Context, client *http.Client, reqBody chatRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if reqBody.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	c.authorize(req)

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

		var errResp struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != nil {
			return nil, fmt.Errorf("%w: status %d: %v", domain.ErrUpstream, resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("%w: OpenAI API returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	return resp, nil
}

// sseStream reads a streamed chat completion as server-sent events
type sseStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

// Next returns the next non-empty content delta, or io.EOF after "data: [DONE]"
func (s *sseStream) Next() (string, error) {
	for {
		if s.done {
			return "", io.EOF
		}

		line, err := s.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			s.done = true
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: stream ended without [DONE]", domain.ErrUpstream)
			}
			return "", fmt.Errorf("%w: failed to read stream: %v", domain.ErrUpstream, err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// event:, id: and retry: fields carry nothing we use
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.done = true
			return "", fmt.Errorf("%w: failed to parse stream chunk: %v", domain.ErrUpstream, err)
		}
		if chunk.Error != nil {
			s.done = true
			return "", fmt.Errorf("%w: %v", domain.ErrUpstream, chunk.Error)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
}

// Close aborts the upstream request and releases the connection
func (s *sseStream) Close() error {
	s.done = true
	s.cancel()
	return s.body.Close()
}
