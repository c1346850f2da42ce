// Package mocks provides centralized mock implementations for testing.
//
// Every mock follows the same shape: a function field per interface method
// that, when set, fully controls the behaviour, and a simple in-memory or
// fixed-value default otherwise. Store mocks return themselves from WithTx
// and MockTransactor calls the unit of work with a nil *sql.Tx, so services
// can be exercised without a database.
//
// Usage:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
package mocks
