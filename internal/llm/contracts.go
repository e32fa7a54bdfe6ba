package llm

import "context"

// CompletionEngine is the upstream text-completion collaborator, used purely
// as a text-to-JSON structuring function. A malformed completion is not an
// engine error; it comes back as content for the parse logic to deal with.
type CompletionEngine interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
