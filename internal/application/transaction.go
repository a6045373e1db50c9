package application

import "context"

// TransactionRunner executes fn atomically. The MongoDB client satisfies this
// with a causally consistent multi-document transaction; tests substitute a
// pass-through.
type TransactionRunner interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTransaction runs fn directly without transactional guarantees. Used in
// tests and against standalone MongoDB deployments that lack replica sets.
type NoTransaction struct{}

// Execute runs fn with the given context
func (NoTransaction) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
