// Package service implements the provenance core: batch registration,
// verification, scan recording and role-scoped dashboard aggregation.
package service

import "errors"

// ErrInvalidActor is returned when a scan is recorded without a usable
// actor name. Caller error, 4xx-equivalent.
var ErrInvalidActor = errors.New("invalid actor")

// ErrInvalidInput is returned when registration input is unusable
// before any side effect happened (empty batch id or artifact).
var ErrInvalidInput = errors.New("invalid input")

// ErrUserNotFound is returned by dashboard aggregation when the user id
// does not resolve.
var ErrUserNotFound = errors.New("user not found")
