// Package prompt builds the grounding prompt sent to the completion API.
package prompt

import "strings"

// Assemble joins the retrieved texts, in order and space separated, into a
// context block and wraps context and question in a fixed instruction.
func Assemble(retrieved []string, question string) string {
	var sb strings.Builder
	sb.WriteString("Use the following context to answer the question.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(retrieved, " "))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}
