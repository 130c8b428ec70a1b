package prompts

// Built-in template names, one per agent task
const (
	ConvertUserInputToGoal     = "convert_user_input_to_goal"
	PrintProjectScope          = "print_project_scope"
	PrintSiteURLs              = "print_site_urls"
	PrintBackendWebserverCode  = "print_backend_webserver_code"
	PrintImprovedWebserverCode = "print_improved_webserver_code"
	PrintFixedCode             = "print_fixed_code"
	PrintRESTAPIEndpoints      = "print_rest_api_endpoints"
)

var builtinDescriptions = map[string]string{
	ConvertUserInputToGoal:     "Summarise a user request into a single website goal",
	PrintProjectScope:          "Decide which capabilities a project needs (JSON object)",
	PrintSiteURLs:              "List external API URLs a project depends on (JSON array)",
	PrintBackendWebserverCode:  "Write webserver code from a template and a project description",
	PrintImprovedWebserverCode: "Fix bugs and fill gaps in generated webserver code",
	PrintFixedCode:             "Fix code given the code and its compiler errors",
	PrintRESTAPIEndpoints:      "List the REST endpoints exposed by webserver code (JSON array)",
}

var builtinText = map[string]string{
	ConvertUserInputToGoal: `convert_user_input_to_goal(user_request: string) -> string
  Input: Takes in a user request
  Function: Converts user request into a short summarized goal
  Output: Prints goal. The goal is always in the format: "build a website that ..."
  Example 1:
    user_request = "I need a website that lets users login and logout. It needs to look fancy and accept payments."
    OUTPUT = "build a website that handles users logging in and logging out and accepts payments"
  Example 2:
    user_request = "Create a price tracker for crypto that shows the best market price."
    OUTPUT = "build a website that fetches crypto prices and displays the best available price"`,

	PrintProjectScope: `print_project_scope(project_description: string) -> object
  Input: Takes in a user request to build a website project description
  Function: Converts user request into JSON response of information items required for a website build.
  Important: At least one of the bool results must be true
  Output: Prints an object response in the following format:
    {
      "is_crud_required": bool,
      "is_user_login_and_logout_required": bool,
      "is_external_urls_required": bool
    }
  Example 1:
    user_request = "I need a full stack website that accepts users and gets stock price data"
    OUTPUT = {"is_crud_required": true, "is_user_login_and_logout_required": true, "is_external_urls_required": true}
  Example 2:
    user_request = "I need a simple TODO app"
    OUTPUT = {"is_crud_required": true, "is_user_login_and_logout_required": false, "is_external_urls_required": false}`,

	PrintSiteURLs: `print_site_urls(project_description: string) -> list of strings
  Input: Takes in a project description of a website build
  Function: Outputs a list of external public API endpoints that should be used in the building of the website
  Important: Only selects url endpoint(s) which do not require any API keys at all
  Output: Prints a JSON array of url strings
  Example:
    OUTPUT = ["https://api.binance.com/api/v3/exchangeInfo", "https://api.binance.com/api/v3/klines?symbol=BTCUSDT&interval=1d"]`,

	PrintBackendWebserverCode: `print_backend_webserver_code(project_description_and_template: string) -> string
  Input: Takes in a PROJECT_DESCRIPTION and CODE_TEMPLATE for a website backend build
  Function: Takes an existing set of code marked as CODE_TEMPLATE and updates or re-writes it to work for the purpose in the PROJECT_DESCRIPTION
  Important: The backend code is ONLY a webserver. Ignore any frontend requirements
  Important: Keep the language and framework of CODE_TEMPLATE
  Output: Print ONLY the code, nothing else`,

	PrintImprovedWebserverCode: `print_improved_webserver_code(project_description_and_code: string) -> string
  Input: Takes in a PROJECT_DESCRIPTION and CODE_TEMPLATE for a website backend build
  Function: Performs the following tasks:
    1. Removes any bugs in the code and adds minor additional functionality
    2. Makes sure everything requested in the project description from a backend standpoint was followed. If not, add the feature. No code should be implemented later. Everything should be written now.
    3. ONLY writes the code. No commentary.
  Important: The backend code is ONLY a webserver. Ignore any frontend requirements
  Output: Print ONLY the code, nothing else`,

	PrintFixedCode: `print_fixed_code(broken_code_with_bugs: string) -> string
  Input: Takes in code with its compiler or runtime errors, marked as BROKEN_CODE and ERROR_BUGS
  Function: Removes bugs from code
  Important: Only prints out the new and improved code. No commentary or anything else`,

	PrintRESTAPIEndpoints: `print_rest_api_endpoints(code_input: string) -> list of objects
  Input: Takes in webserver code
  Function: Prints out the JSON schema for url endpoints and their respective types
  Logic: Script analyses all code and categorizes into the following object keys:
    "route": the url path of the endpoint
    "is_route_dynamic": true if the route contains dynamic parameters, otherwise false
    "method": the http method
    "request_body": null or an object describing the body
    "response": null or an object describing the response
  Important: Only prints out the JSON array, no commentary or anything else
  Example:
    [
      {"route": "/item/{id}", "is_route_dynamic": true, "method": "get", "request_body": null, "response": {"id": "number", "name": "string"}},
      {"route": "/item", "is_route_dynamic": false, "method": "post", "request_body": {"name": "string"}, "response": null}
    ]`,
}

// Builtin returns a library holding the built-in agent templates.
// Each call returns a fresh library the caller may extend.
func Builtin() *Library {
	l := NewLibrary()
	for name, text := range builtinText {
		l.Register(Static(name, text))
	}
	return l
}

// MustBuiltin returns the named built-in template and panics if it is unknown.
// Intended for package-level wiring of known names.
func MustBuiltin(name string) Template {
	text, ok := builtinText[name]
	if !ok {
		panic("prompts: unknown built-in template " + name)
	}
	return Static(name, text)
}
