package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path    string
	Auth    string
	Org     string
	Payload map[string]interface{}
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.Path = r.URL.Path
			captured.Auth = r.Header.Get("Authorization")
			captured.Org = r.Header.Get("OpenAI-Organization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &captured.Payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		APIKey:         "sk-test",
		OrganizationID: "org-test",
		BaseURL:        srv.URL + "/v1",
		Timeout:        5 * time.Second,
	})
}

const okBody = `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-3.5-turbo",
"choices":[{"index":0,"message":{"role":"assistant","content":"[\"red\",\"green\",\"blue\"]"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`

func TestComplete_Success(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, okBody, &got)
	client := newTestClient(srv)

	out, err := client.Complete(context.Background(), []Message{NewSystemMessage("FUNCTION colours")})
	require.NoError(t, err)
	assert.Equal(t, `["red","green","blue"]`, out)

	assert.Equal(t, "/v1/chat/completions", got.Path)
	assert.Equal(t, "Bearer sk-test", got.Auth)
	assert.Equal(t, "org-test", got.Org)
	assert.Equal(t, "gpt-3.5-turbo", got.Payload["model"])
	assert.InDelta(t, 0.1, got.Payload["temperature"], 1e-6)

	msgs, ok := got.Payload["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 1)
	first := msgs[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "FUNCTION colours", first["content"])
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil)

	_, err := newTestClient(srv).Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_ServerError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError,
		`{"error":{"message":"boom","type":"server_error"}}`, nil)

	_, err := newTestClient(srv).Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestComplete_Unauthorized(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"bad key","type":"invalid_request_error"}}`, nil)

	_, err := newTestClient(srv).Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestComplete_MalformedBody(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"choices": [`, nil)

	_, err := newTestClient(srv).Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestComplete_ConnectionFailure(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, okBody, nil)
	client := newTestClient(srv)
	srv.Close()

	_, err := client.Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Equal(t, 0, StatusCode(err))
}

func TestComplete_InvalidHeaderValue(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, okBody, &got)
	client := NewClient(Options{APIKey: "sk-bad\nkey", OrganizationID: "org", BaseURL: srv.URL + "/v1"})

	_, err := client.Complete(context.Background(), []Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Empty(t, got.Path, "request must not be sent")
}

func TestComplete_NoMessages(t *testing.T) {
	client := NewClient(Options{APIKey: "sk", OrganizationID: "org"})

	_, err := client.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Options{})
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, "gpt-3.5-turbo", client.Model())
}
