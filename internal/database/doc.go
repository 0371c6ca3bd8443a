// Package database provides the PostgreSQL connection pool for the archive.
//
// The CSV store stays the system of record; Postgres is an optional mirror
// for ad-hoc queries, so the bridge opens a single pool and only when the
// archive is enabled.
package database
