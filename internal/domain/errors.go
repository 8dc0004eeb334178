package domain

import "errors"

// ErrNotFound is returned when the requested trip or item does not exist.
// Handlers map this to HTTP 404; the client maps 404 back to it.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. blank title, item day beyond the trip's day count).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when an operation needs a session and none
// is available, or when the storage service rejects the bearer token.
// The store returns it before making any network call.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrRemote wraps transport failures and unexpected responses from the
// trip-storage service. Failed calls are reported, never retried.
var ErrRemote = errors.New("remote storage failure")

// ErrBusy is returned when a save is requested while another save for the
// same store is still in flight.
var ErrBusy = errors.New("operation already in progress")
