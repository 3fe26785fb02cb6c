// Package repository defines the provenance record store and its error
// types. These sentinel values allow higher layers such as handlers to
// distinguish between different failure scenarios. For example,
// ErrDuplicateBatch indicates an attempt to register a batch id that
// already exists, while ErrForbidden indicates that the current user is
// not authorized to act on a resource owned by someone else.
package repository

import "errors"

// ErrBatchNotFound is returned when no batch exists for the requested
// batch id. Handlers should translate this into an HTTP 404 response.
var ErrBatchNotFound = errors.New("batch not found")

// ErrDuplicateBatch is returned when a batch id is registered twice.
// Duplicate registration is terminal: the existing batch record is left
// untouched. Handlers should translate this into an HTTP 409 response.
var ErrDuplicateBatch = errors.New("batch id already exists")

// ErrScanNotFound is returned when no scan event exists for the
// requested scan id.
var ErrScanNotFound = errors.New("scan not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
