// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the lifecycle coordinator to distinguish between failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a row addressed by id (or kind) does not
// exist. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique email constraint. Handlers translate this into an HTTP 400.
var ErrEmailExists = errors.New("email already exists")
