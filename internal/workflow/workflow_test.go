package workflow

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/rohankatakam/autogippity/internal/llm/mock"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/rohankatakam/autogippity/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel answers by template name, found on the FUNCTION line
type scriptedModel struct {
	mu      sync.Mutex
	answers map[string]string
	seen    map[string][]string // template → inputs
}

func newScriptedModel(answers map[string]string) *scriptedModel {
	return &scriptedModel{answers: answers, seen: map[string][]string{}}
}

func (m *scriptedModel) complete(msgs []llm.Message) (string, error) {
	content := msgs[0].Content
	for name, answer := range m.answers {
		if strings.HasPrefix(content, "FUNCTION "+name+"(") {
			m.mu.Lock()
			m.seen[name] = append(m.seen[name], content)
			m.mu.Unlock()
			return answer, nil
		}
	}
	return "", errors.TransportError(nil, "unexpected prompt")
}

type recordingReporter struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingReporter) Report(agentName, operation string, phase agent.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, fmt.Sprintf("%s|%s|%s", agentName, phase, operation))
}

func setup(t *testing.T, answers map[string]string) (Deps, *scriptedModel, storage.Paths, *recordingReporter) {
	t.Helper()
	dir := t.TempDir()
	paths := storage.Paths{
		CodeTemplate: filepath.Join(dir, "web_template", "code_template.go"),
		ExecMain:     filepath.Join(dir, "web_template", "main.go"),
		APISchema:    filepath.Join(dir, "schemas", "api_schema.json"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.CodeTemplate), 0755))
	require.NoError(t, os.WriteFile(paths.CodeTemplate, []byte("package main // TEMPLATE"), 0644))

	model := newScriptedModel(answers)
	reporter := &recordingReporter{}
	deps := Deps{
		Invoker:  agent.NewInvoker(mock.NewFunc(model.complete), agent.WithReporter(reporter)),
		Store:    storage.NewFileStore(paths),
		Reporter: reporter,
	}
	return deps, model, paths, reporter
}

func TestRun_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	deps, model, paths, reporter := setup(t, map[string]string{
		prompts.ConvertUserInputToGoal:     "build a website that tracks crypto prices",
		prompts.PrintProjectScope:          `{"is_crud_required":false,"is_user_login_and_logout_required":false,"is_external_urls_required":true}`,
		prompts.PrintSiteURLs:              fmt.Sprintf(`["%s/good","%s/bad"]`, srv.URL, srv.URL),
		prompts.PrintBackendWebserverCode:  "package main // v1",
		prompts.PrintImprovedWebserverCode: "package main // v2",
		prompts.PrintRESTAPIEndpoints:      `[{"route":"/price/{symbol}","is_route_dynamic":true,"method":"get","request_body":null,"response":{"price":"number"}}]`,
	})
	deps.HTTPClient = srv.Client()

	fs, err := Run(context.Background(), deps, "I need a crypto price tracker")
	require.NoError(t, err)

	assert.Equal(t, "build a website that tracks crypto prices", fs.ProjectDescription)
	require.NotNil(t, fs.ProjectScope)
	assert.True(t, fs.ProjectScope.IsExternalURLsRequired)
	assert.Equal(t, []string{srv.URL + "/good"}, fs.ExternalURLs)
	assert.Equal(t, "package main // v2", fs.BackendCode)
	require.Len(t, fs.APIEndpointSchema, 1)
	assert.Equal(t, "/price/{symbol}", fs.APIEndpointSchema[0].Route)
	assert.True(t, fs.APIEndpointSchema[0].IsRouteDynamic)
	assert.Nil(t, fs.APIEndpointSchema[0].RequestBody)

	code, err := os.ReadFile(paths.ExecMain)
	require.NoError(t, err)
	assert.Equal(t, "package main // v2", string(code))

	schema, err := os.ReadFile(paths.APISchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"route": "/price/{symbol}"`)

	require.Len(t, model.seen[prompts.PrintBackendWebserverCode], 1)
	assert.Contains(t, model.seen[prompts.PrintBackendWebserverCode][0], "package main // TEMPLATE")
	assert.Contains(t, model.seen[prompts.PrintBackendWebserverCode][0], "crypto prices")

	assert.Contains(t, reporter.entries, "Solutions Architect|issue|Excluding faulty URL: "+srv.URL+"/bad")
	assert.Contains(t, reporter.entries, "Managing Agent|ai-call|Defining user requirements")
}

func TestRun_SkipsURLsWhenNotRequired(t *testing.T) {
	deps, model, _, _ := setup(t, map[string]string{
		prompts.ConvertUserInputToGoal:     "build a website that lists todos",
		prompts.PrintProjectScope:          `{"is_crud_required":true,"is_user_login_and_logout_required":false,"is_external_urls_required":false}`,
		prompts.PrintBackendWebserverCode:  "v1",
		prompts.PrintImprovedWebserverCode: "v2",
		prompts.PrintRESTAPIEndpoints:      `[]`,
	})

	fs, err := Run(context.Background(), deps, "todo app")
	require.NoError(t, err)
	assert.Empty(t, fs.ExternalURLs)
	assert.Empty(t, model.seen[prompts.PrintSiteURLs])
	assert.Empty(t, fs.APIEndpointSchema)
}

func TestRun_StopsAtDecodeError(t *testing.T) {
	deps, model, paths, _ := setup(t, map[string]string{
		prompts.ConvertUserInputToGoal: "build a website",
		prompts.PrintProjectScope:      `{"is_crud_required":true}`,
	})

	fs, err := Run(context.Background(), deps, "something")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDecode)
	assert.Equal(t, "build a website", fs.ProjectDescription)
	assert.Nil(t, fs.ProjectScope)
	assert.Len(t, model.seen[prompts.PrintProjectScope], 1, "decode errors are not retried")

	_, statErr := os.Stat(paths.ExecMain)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_FatalInvocation(t *testing.T) {
	deps, _, _, _ := setup(t, map[string]string{})

	_, err := Run(context.Background(), deps, "something")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
	assert.Equal(t, 2, errors.Attempts(err))
}

func TestManaging_EmptyRequest(t *testing.T) {
	deps, _, _, _ := setup(t, nil)
	err := NewManaging(deps).DefineGoal(context.Background(), &FactSheet{}, "  ")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestBackend_FixCode(t *testing.T) {
	deps, model, paths, _ := setup(t, map[string]string{
		prompts.PrintFixedCode: "package main // fixed",
	})

	fs := &FactSheet{BackendCode: "package main // broken"}
	require.NoError(t, NewBackend(deps).FixCode(context.Background(), fs, "undefined: foo"))
	assert.Equal(t, "package main // fixed", fs.BackendCode)

	require.Len(t, model.seen[prompts.PrintFixedCode], 1)
	assert.Contains(t, model.seen[prompts.PrintFixedCode][0], "undefined: foo")

	code, err := os.ReadFile(paths.ExecMain)
	require.NoError(t, err)
	assert.Equal(t, "package main // fixed", string(code))

	err = NewBackend(deps).FixCode(context.Background(), &FactSheet{}, "x")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestBackend_MissingTemplate(t *testing.T) {
	deps, _, paths, _ := setup(t, nil)
	require.NoError(t, os.Remove(paths.CodeTemplate))

	err := NewBackend(deps).WriteCode(context.Background(), &FactSheet{ProjectDescription: "x"})
	assert.ErrorIs(t, err, errors.ErrFileSystem)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
