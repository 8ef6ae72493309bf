// Package api contains the HTTP handlers, request/response models and error
// mapping for the task manager's REST surface.
package api
