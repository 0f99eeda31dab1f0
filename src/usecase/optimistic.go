package usecase

import "context"

// applyOptimistic applies a local mutation immediately, then persists it.
// If the persistence call fails, rollback is invoked (an inverse mutation for
// single-record changes, a full reload for multi-record ones) and the error
// is returned to the caller.
func applyOptimistic(ctx context.Context, mutate func(), persist func(context.Context) error, rollback func()) error {
	mutate()
	if err := persist(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}
