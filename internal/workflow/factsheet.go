// Package workflow chains agent roles into a website build: the managing
// agent states the goal, the architect scopes it and the backend developer
// writes, improves and documents the server code.
package workflow

import (
	"encoding/json"
	"net/http"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/storage"
)

// ProjectScope is the architect's decision on required capabilities
type ProjectScope struct {
	IsCRUDRequired               bool `json:"is_crud_required"`
	IsUserLoginAndLogoutRequired bool `json:"is_user_login_and_logout_required"`
	IsExternalURLsRequired       bool `json:"is_external_urls_required"`
}

// RouteObject describes one endpoint of the generated server
type RouteObject struct {
	Route          string `json:"route"`
	IsRouteDynamic bool   `json:"is_route_dynamic"`
	Method         string `json:"method"`
	RequestBody    any    `json:"request_body"`
	Response       any    `json:"response"`
}

// FactSheet is the shared state the roles read and extend in turn
type FactSheet struct {
	ProjectDescription string        `json:"project_description"`
	ProjectScope       *ProjectScope `json:"project_scope,omitempty"`
	ExternalURLs       []string      `json:"external_urls,omitempty"`
	BackendCode        string        `json:"backend_code,omitempty"`
	APIEndpointSchema  []RouteObject `json:"api_endpoint_schema,omitempty"`
}

// String renders the fact sheet as JSON for prompts and logs
func (fs *FactSheet) String() string {
	data, err := json.Marshal(fs)
	if err != nil {
		return fs.ProjectDescription
	}
	return string(data)
}

// Deps are the collaborators shared by every role
type Deps struct {
	Invoker    *agent.Invoker
	Store      storage.ArtifactStore
	Reporter   agent.StatusReporter
	HTTPClient *http.Client
	CheckLimit int
}

func (d Deps) reporter() agent.StatusReporter {
	if d.Reporter == nil {
		return agent.NopReporter{}
	}
	return d.Reporter
}
