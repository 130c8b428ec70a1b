package prompts

import (
	"fmt"

	"github.com/rohankatakam/autogippity/internal/llm"
)

const augmentFormat = "FUNCTION %s \n" +
	"  INSTRUCTION: You are a function printer. You ONLY print the results of functions.\n" +
	"  Nothing else. No commentary. Here is the input to the function: %s.\n" +
	"  Print out what the function will return."

// Augment wraps the text generated by t for input into a system message that
// tells the model to reply with the function's output only.
// Deterministic for a given template and input.
func Augment(t Template, input string) llm.Message {
	return llm.NewSystemMessage(fmt.Sprintf(augmentFormat, t.Generate(input), input))
}
