package access

import "context"

type decisionContextKey struct{}

// WithDecision stores an admitting decision on the request context so
// handlers behind the guard can see who was let in and why.
func WithDecision(ctx context.Context, decision Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, decision)
}

func DecisionFromContext(ctx context.Context) (Decision, bool) {
	decision, ok := ctx.Value(decisionContextKey{}).(Decision)
	return decision, ok
}
