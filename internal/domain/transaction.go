package domain

import "context"

// TransactionManager runs a function within a single storage transaction.
// The answer insert and the session aggregate update of one evaluation must
// commit or roll back together; neither row may exist without the other.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
