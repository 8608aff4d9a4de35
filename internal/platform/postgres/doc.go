// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they can run against either
// a connection pool or a caller-managed transaction; database errors are
// translated into store sentinel errors via MapError.
package postgres
