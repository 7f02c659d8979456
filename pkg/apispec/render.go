package apispec

import (
	"fmt"
	"strings"
)

// RenderPrompt produces the plain-text form of a reduced description for
// inclusion in a completion prompt. The output is deterministic: operations
// appear in their reduced (sorted) order.
func (r *Reduced) RenderPrompt() string {
	var b strings.Builder

	if r.Title != "" {
		fmt.Fprintf(&b, "Service: %s\n", r.Title)
	}
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	if len(r.Servers) > 0 {
		fmt.Fprintf(&b, "Base URL: %s\n", strings.Join(r.Servers, ", "))
	}

	b.WriteString("Operations:\n")
	for _, op := range r.Endpoints {
		fmt.Fprintf(&b, "- %s %s", op.Method, op.Path)
		if op.Summary != "" {
			fmt.Fprintf(&b, ": %s", op.Summary)
		}
		if len(op.Parameters) > 0 {
			b.WriteString(" [params: ")
			for i, p := range op.Parameters {
				if i > 0 {
					b.WriteString("; ")
				}
				b.WriteString(renderParameter(p))
			}
			b.WriteString("]")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderParameter(p Parameter) string {
	var parts []string
	parts = append(parts, p.In)
	if p.Type != "" {
		parts = append(parts, p.Type)
	}
	if p.Required {
		parts = append(parts, "required")
	}
	return fmt.Sprintf("%s (%s)", p.Name, strings.Join(parts, ", "))
}
