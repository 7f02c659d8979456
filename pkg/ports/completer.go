package ports

import "context"

// Completer is a hosted completion model, specified only at the boundary.
//
// Complete is synchronous and may fail with domain.ErrRateLimited or
// domain.ErrModelFailure. Implementations live under pkg/adapters.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
// Useful for scripted fakes in tests.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
