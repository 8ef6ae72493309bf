// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces. Writes that carry a version are guarded with
// "WHERE id = ... AND version = ..." so a stale caller observes
// store.ErrVersionConflict instead of silently clobbering a concurrent
// update.
package postgres
