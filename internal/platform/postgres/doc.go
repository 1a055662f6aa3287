// Package postgres contains the PostgreSQL implementations of the store
// interfaces. All implementations accept a store.DBTX so they can run
// against either a plain connection or a transaction created with
// store.RunInTransaction.
package postgres
