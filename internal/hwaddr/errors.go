package hwaddr

import "errors"

// ErrNotFound is matched (with errors.Is) by every failure to find a MAC.
var ErrNotFound = errors.New("MAC address not found")

// NotFoundError is the terminal failure of a guess. Err holds the command
// failure that ended the link scan, if that is what happened.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return ErrNotFound.Error() + ": " + e.Err.Error()
	}
	return ErrNotFound.Error()
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
