package prompts

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/rohankatakam/autogippity/internal/errors"
	"gopkg.in/yaml.v3"
)

// templateFile is the YAML document read by LoadFile
//
//	templates:
//	  - name: print_colours
//	    description: List colours
//	    text: |
//	      print_colours(topic: string) -> list of strings
//	        Input: {{.Input}}
type templateFile struct {
	Templates []templateEntry `yaml:"templates"`
}

type templateEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Text        string `yaml:"text"`
}

type templateData struct {
	Input string
}

// textTemplate renders a text/template with {{.Input}} bound to the task input
type textTemplate struct {
	name        string
	description string
	raw         string
	tmpl        *template.Template
}

func (t *textTemplate) Name() string        { return t.name }
func (t *textTemplate) Description() string { return t.description }

// Generate renders the template. A render failure yields the unrendered text
// so the template stays total.
func (t *textTemplate) Generate(input string) string {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, templateData{Input: input}); err != nil {
		slog.Default().With("component", "prompts").Warn("template render failed, using raw text",
			"template", t.name, "error", err)
		return t.raw
	}
	return buf.String()
}

// Parse builds a Template from text/template source. The template is
// executed once with an empty input so structural errors surface here.
func Parse(name, description, text string) (Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.ValidationError("template name is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.ValidationErrorf("template %q has no text", name)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.SeverityHigh, "invalid template").
			WithContext(errors.ContextTemplate, name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{}); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.SeverityHigh, "template does not render").
			WithContext(errors.ContextTemplate, name)
	}

	return &textTemplate{name: name, description: description, raw: text, tmpl: tmpl}, nil
}

// LoadFile reads templates from a YAML file
func LoadFile(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to read templates file %s", path).
			WithContext(errors.ContextPath, path)
	}

	var doc templateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.SeverityHigh, "failed to parse templates file").
			WithContext(errors.ContextPath, path)
	}

	seen := make(map[string]bool, len(doc.Templates))
	out := make([]Template, 0, len(doc.Templates))
	for _, entry := range doc.Templates {
		if seen[entry.Name] {
			return nil, errors.ValidationErrorf("duplicate template %q in %s", entry.Name, path)
		}
		seen[entry.Name] = true

		t, err := Parse(entry.Name, entry.Description, entry.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadInto reads templates from path and registers them in l,
// overriding templates of the same name
func LoadInto(l *Library, path string) error {
	templates, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, t := range templates {
		l.Register(t)
	}
	return nil
}
