// Package domain defines the core business entities of the task manager:
// users with their account lifecycle and lockout state, tasks with their
// status state machine, and single-use verification tokens.
//
// Entities carry the predicates and transitions that the services and the
// maintenance sweeps rely on; persistence concerns (versions, timestamps)
// are stored here but assigned by the store layer.
package domain
