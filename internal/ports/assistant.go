package ports

import "context"

// Assistant defines the AI-assisted rewrite surface: given the current
// diagram definition and a natural-language instruction, it returns the
// rewritten definition.
type Assistant interface {
	// Rewrite performs one round trip. On failure the caller keeps its
	// local text untouched.
	Rewrite(ctx context.Context, currentCode, userRequest string) (string, error)

	// IsAvailable reports whether the assist backend answered a recent
	// health check.
	IsAvailable(ctx context.Context) bool
}
