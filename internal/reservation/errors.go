package reservation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a guest, room, booking or invoice id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState reports a lifecycle violation or malformed input.
	ErrInvalidState = errors.New("invalid state")
	// ErrRoomUnavailable is the InvalidState returned when a room is already taken for the window.
	ErrRoomUnavailable = fmt.Errorf("%w: room not available", ErrInvalidState)
)

// IsNotFound reports whether err is classified as NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState reports whether err is classified as InvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsUnavailable reports whether err is a booking conflict.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRoomUnavailable)
}
