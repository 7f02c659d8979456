package espalier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Runner handles an interactive question loop against the Agent using
// provided IO. This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the answer before
// outputting it. This allows for TUI rendering (markdown to ANSI) without
// coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. The caller must set Input and Output
// (typically os.Stdin and os.Stdout).
func NewRunner() *Runner {
	return &Runner{}
}

// Run reads questions line by line and dispatches each one to the named
// tool until EOF or an empty line.
func (r *Runner) Run(ctx context.Context, agent *Agent, tool string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintf(r.Output, "Ask a question (tool: %s). Empty line to quit.\n", tool)
	}

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		question := strings.TrimSpace(text)
		if question == "" {
			return nil
		}

		answer := agent.Dispatch(ctx, tool, question)

		output := answer
		if r.Renderer != nil {
			if rendered, rerr := r.Renderer(answer); rerr == nil {
				output = rendered
			}
		}
		fmt.Fprintln(r.Output, strings.TrimSpace(output))
	}
}
