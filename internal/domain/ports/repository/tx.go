package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres).
// Repositories accept NoTX to run on the pool directly.
type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn inside one database transaction. fn's error
// rolls the transaction back; nil commits it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
