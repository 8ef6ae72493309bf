// Package mocks provides in-memory test doubles for the store interfaces
// and collaborating services.
//
// The store mocks keep rows in maps and hand out copies, so a caller holds a
// snapshot exactly like it would with real rows. Version-checked writes are
// emulated faithfully: saving or deleting with a stale version returns
// store.ErrVersionConflict.
package mocks
