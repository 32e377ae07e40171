package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn inside a database transaction, passing the
// transaction handle through tx.
//
// Repositories accept tx on every method and MUST accept nil (NoTX), which
// runs the statement directly on the pool. The concrete type is infra-defined
// (pgx.Tx for Postgres).
//
// The payment workflow itself runs its multi-entity writes as ordered,
// independently failable steps (see usecase.Saga); WithTx is for maintenance
// paths that must be atomic, such as the lapsed-subscription sweep.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
