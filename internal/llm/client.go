package llm

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/net/http/httpguts"
)

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = openai.GPT3Dot5Turbo

	// DefaultBaseURL is the OpenAI v1 API root
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single HTTP exchange
	DefaultTimeout = 60 * time.Second

	// Temperature is fixed for every request
	Temperature float32 = 0.1
)

// Options configures a Client
type Options struct {
	APIKey         string
	OrganizationID string
	Model          string
	BaseURL        string
	Timeout        time.Duration
}

// Client is the transport for chat completions. It holds only immutable
// configuration and is safe for concurrent use.
type Client struct {
	openaiClient *openai.Client
	apiKey       string
	orgID        string
	model        string
	logger       *slog.Logger
}

// NewClient creates an OpenAI chat completion client.
// The organization id is sent as the OpenAI-Organization header on every request.
func NewClient(opts Options) *Client {
	logger := slog.Default().With("component", "llm")

	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.OrgID = opts.OrganizationID
	cfg.BaseURL = opts.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	logger.Debug("openai client initialized", "model", opts.Model, "base_url", opts.BaseURL, "timeout", opts.Timeout)

	return &Client{
		openaiClient: openai.NewClientWithConfig(cfg),
		apiKey:       opts.APIKey,
		orgID:        opts.OrganizationID,
		model:        opts.Model,
		logger:       logger,
	}
}

// Model returns the configured chat model
func (c *Client) Model() string {
	return c.model
}

// Complete sends messages in one request and returns choices[0].message.content
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.ValidationError("completion request needs at least one message")
	}

	if !httpguts.ValidHeaderFieldValue("Bearer "+c.apiKey) || !httpguts.ValidHeaderFieldValue(c.orgID) {
		return "", errors.TransportError(nil, "failed to build request headers: credentials contain invalid characters")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", transportError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.TransportError(nil, "openai returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion",
		"model", c.model,
		"messages", len(messages),
		"response_length", len(response),
		"tokens_used", resp.Usage.TotalTokens,
	)

	return response, nil
}

// transportError classifies a go-openai failure, keeping the HTTP status when known
func transportError(err error) *errors.Error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.TransportErrorf(err, "openai returned status %d", apiErr.HTTPStatusCode).
			WithContext(errors.ContextStatusCode, apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return errors.TransportErrorf(err, "openai request failed with status %d", reqErr.HTTPStatusCode).
			WithContext(errors.ContextStatusCode, reqErr.HTTPStatusCode)
	}

	return errors.TransportError(err, "openai completion failed")
}

// StatusCode returns the HTTP status recorded on a transport error, or 0
func StatusCode(err error) int {
	var e *errors.Error
	for stderrors.As(err, &e) {
		if code, ok := e.Context[errors.ContextStatusCode].(int); ok {
			return code
		}
		err = e.Cause
		if err == nil {
			return 0
		}
	}
	return 0
}
