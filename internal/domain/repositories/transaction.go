package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager wraps multi-row mutations (folder cascade, content
// migration, account approval) in a single transaction so a crash cannot
// leave a partially-applied state.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
