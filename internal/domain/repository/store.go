package repository

import "context"

// Store groups the repositories behind one transactional boundary.
type Store interface {
	Users() UserRepository
	Courses() CourseRepository
	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional Store reuses the transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
