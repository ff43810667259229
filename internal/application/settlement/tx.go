package settlement

import "context"

// TransactionManager runs a unit of work atomically. The context passed to
// fn carries the transaction; repositories resolve it so every repository
// call inside fn joins the same database transaction.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTransactionManager runs the unit of work without a surrounding
// transaction. Used in tests.
type NoopTransactionManager struct{}

// Execute runs fn directly
func (NoopTransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
