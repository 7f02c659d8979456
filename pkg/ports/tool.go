package ports

import "context"

// Tool is one bounded external action selectable by the reasoning loop.
//
// Invoke always produces plain text for the loop to observe. Failures the
// tool understands (a rejected host, a dead upstream, unparseable model
// output) are converted to a textual explanation at the tool boundary so the
// loop can pivot to another action. Only transport-level completion failures
// (rate limits, timeouts) escape as errors; the turn runner retries those.
type Tool interface {
	// Name is the stable identifier the reasoning loop selects by.
	Name() string

	// Description is the one-line summary shown to the loop for selection.
	Description() string

	// Invoke performs the action for the given query.
	Invoke(ctx context.Context, query string) (string, error)
}
