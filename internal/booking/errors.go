package booking

import "errors"

var (
	// ErrInvalidRequest is wrapped by every validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownPool is returned for an availability query on a pool that
	// does not exist.
	ErrUnknownPool = errors.New("unknown pool")
	// ErrUnknownResource is returned when a booking names a resource that is
	// not part of its pool.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrTimeConflict is returned when the resource is already booked for an
	// overlapping interval.
	ErrTimeConflict = errors.New("resource already booked for this time")
	// ErrBookingNotFound is returned when a cancellation matched no booking.
	ErrBookingNotFound = errors.New("booking not found")
)
