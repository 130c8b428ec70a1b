package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugment_SystemMessage(t *testing.T) {
	tmpl := MustBuiltin(ConvertUserInputToGoal)
	msg := Augment(tmpl, "dummy variable")

	assert.Equal(t, llm.RoleSystem, msg.Role)
	assert.True(t, strings.HasPrefix(msg.Content, "FUNCTION "+tmpl.Generate("dummy variable")))
	assert.Contains(t, msg.Content, "Here is the input to the function: dummy variable.")
	assert.Contains(t, msg.Content, "You ONLY print the results of functions.")
	assert.True(t, strings.HasSuffix(msg.Content, "Print out what the function will return."))
}

func TestAugment_Deterministic(t *testing.T) {
	tmpl := NewFunc("echo", func(in string) string { return "echo(" + in + ")" })
	a := Augment(tmpl, "x")
	b := Augment(tmpl, "x")
	assert.Equal(t, a, b)
	assert.Contains(t, a.Content, "FUNCTION echo(x)")
}

func TestAugment_EmptyInput(t *testing.T) {
	msg := Augment(Static("noop", "noop()"), "")
	assert.Equal(t, llm.RoleSystem, msg.Role)
	assert.Contains(t, msg.Content, "Here is the input to the function: .")
}

func TestBuiltin(t *testing.T) {
	lib := Builtin()
	assert.Equal(t, []string{
		ConvertUserInputToGoal,
		PrintBackendWebserverCode,
		PrintFixedCode,
		PrintImprovedWebserverCode,
		PrintProjectScope,
		PrintRESTAPIEndpoints,
		PrintSiteURLs,
	}, lib.Names())

	for _, name := range lib.Names() {
		tmpl, ok := lib.Lookup(name)
		require.True(t, ok)
		assert.Contains(t, tmpl.Generate("anything"), name)
		assert.NotEmpty(t, lib.Describe(name))
	}

	assert.Panics(t, func() { MustBuiltin("nope") })
}

func TestLibrary_RegisterOverrides(t *testing.T) {
	lib := Builtin()
	lib.Register(Static(PrintSiteURLs, "override"))

	tmpl, ok := lib.Lookup(PrintSiteURLs)
	require.True(t, ok)
	assert.Equal(t, "override", tmpl.Generate(""))

	_, ok = lib.Lookup("missing")
	assert.False(t, ok)
	assert.Empty(t, lib.Describe("missing"))
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
templates:
  - name: print_colours
    description: List colours for a topic
    text: |
      print_colours(topic: string) -> list of strings
        Input: {{.Input}}
        Output: a JSON array of colour names
`)

	lib := Builtin()
	require.NoError(t, LoadInto(lib, path))

	tmpl, ok := lib.Lookup("print_colours")
	require.True(t, ok)
	assert.Contains(t, tmpl.Generate("primary colours"), "Input: primary colours")
	assert.Equal(t, "List colours for a topic", lib.Describe("print_colours"))
	assert.Equal(t, tmpl.Generate("a"), tmpl.Generate("a"))
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad yaml", "templates: [", errors.ErrValidation},
		{"missing name", "templates:\n  - text: hi\n", errors.ErrValidation},
		{"empty text", "templates:\n  - name: a\n", errors.ErrValidation},
		{"parse error", "templates:\n  - name: a\n    text: '{{.Input'\n", errors.ErrValidation},
		{"unknown field", "templates:\n  - name: a\n    text: '{{.Missing}}'\n", errors.ErrValidation},
		{"duplicate", "templates:\n  - name: a\n    text: x\n  - name: a\n    text: y\n", errors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, errors.ErrFileSystem)
}
