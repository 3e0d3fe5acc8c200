package assistant

import (
	"fmt"
	"strings"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// exhaustedText is returned when the model keeps requesting tools past the
// iteration cap. Not an error, a designed terminal outcome.
const exhaustedText = "I wasn't able to finish that request. Please try rephrasing it or breaking it into smaller steps."

// fallbackText maps a completion failure class to a user-safe reply.
// Raw provider errors never reach the user, and the authentication text
// deliberately says nothing about API keys.
func fallbackText(class llm.ErrorClass) string {
	switch class {
	case llm.ErrorClassRateLimit:
		return "I'm experiencing high demand right now. Please try again shortly."
	case llm.ErrorClassConnection:
		return "I'm having trouble connecting to the assistant service. Please try again in a moment."
	case llm.ErrorClassAuthentication:
		return "The assistant is not configured correctly. Please contact support."
	default:
		return "Something went wrong while handling your request. Please try again."
	}
}

// systemPrompt builds the per-run system message: assistant instructions,
// today's date, and the caller's identity for the model's reasoning context.
// The identity here is informational only; the trusted identity is injected
// into every tool execution by the registry dispatch, not read back from
// the model.
func (o *Orchestrator) systemPrompt(identity types.ID) string {
	var b strings.Builder

	b.WriteString("You are TaskMind, a friendly todo-list assistant. ")
	b.WriteString("You help the user manage their tasks using the tools provided.\n\n")

	fmt.Fprintf(&b, "Today's date is %s.\n", o.now().Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "You are assisting user %s.\n\n", identity)

	b.WriteString("Guidelines:\n")
	b.WriteString("- Use the tools to read or change tasks; never invent task data.\n")
	b.WriteString("- After changing a task, confirm to the user what was done.\n")
	b.WriteString("- When a request is ambiguous (for example, which task to complete), ask a clarifying question instead of guessing.\n")
	b.WriteString("- When a tool returns an error, explain the problem in plain language and suggest what the user can do.\n")
	b.WriteString("- Dates you pass to tools must be in YYYY-MM-DD format.\n")
	b.WriteString("- Keep replies short and conversational.\n")

	return b.String()
}
