package dal

import "database/sql"

// execer is satisfied by both *sql.DB and *sql.Tx, letting the same query
// logic run against the pooled connection or an in-flight batch
// transaction without duplicating it. This matters because the
// connection pool is pinned to a single connection (see
// internal/database.Open), so a method that opened its own *sql.DB query
// while a caller's transaction was in flight would deadlock waiting for
// a second connection that will never come.
type execer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
}
