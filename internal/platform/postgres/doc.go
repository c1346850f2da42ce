// Package postgres implements the store interfaces on PostgreSQL.
//
// Stores run over database/sql with the pgx stdlib driver and accept a
// store.DBTX so the same code serves plain connections and transactions.
// PostgreSQL error codes are translated into the store package's sentinel
// errors. The schema lives in the embedded migrations directory and is
// applied with goose.
package postgres
