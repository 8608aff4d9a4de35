// Package store defines the persistence interfaces for exam jobs and exam
// records, along with shared database plumbing: the DBTX abstraction over
// *sql.DB / *sql.Tx, the RunInTransaction helper, and the sentinel errors
// store implementations translate database failures into.
package store
