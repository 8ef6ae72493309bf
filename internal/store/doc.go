// Package store defines the persistence interfaces consumed by the services
// and maintenance sweeps, the shared error taxonomy for storage failures,
// and the transaction helpers used to compose multi-store operations.
//
// All writes are optimistic: rows carry a monotonic version counter, every
// version-checked write supplies the version it read, and a stale version
// yields ErrVersionConflict instead of silently overwriting. No pessimistic
// row locks are held anywhere.
package store
