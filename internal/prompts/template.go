// Package prompts holds the prompt templates handed to the model and the
// augmenter that wraps them into a constrained system instruction.
package prompts

// Template produces the description of a function the model should act as.
// Generate must be pure: the same input always yields the same text.
type Template interface {
	Name() string
	Generate(input string) string
}

type funcTemplate struct {
	name string
	fn   func(input string) string
}

// NewFunc adapts a pure function into a named Template
func NewFunc(name string, fn func(input string) string) Template {
	return funcTemplate{name: name, fn: fn}
}

func (t funcTemplate) Name() string                 { return t.name }
func (t funcTemplate) Generate(input string) string { return t.fn(input) }

type staticTemplate struct {
	name string
	text string
}

// Static returns a Template whose text does not depend on its input
func Static(name, text string) Template {
	return staticTemplate{name: name, text: text}
}

func (t staticTemplate) Name() string           { return t.name }
func (t staticTemplate) Generate(string) string { return t.text }
