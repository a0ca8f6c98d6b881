// Error sentinels shared across repositories.  Handlers translate these
// into HTTP status codes: ErrEmailExists becomes 409, the not-found pair
// feed the opaque 401 paths.
package repository

import "errors"

// ErrEmailExists is returned by Create when the email is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when no live session matches the lookup,
// covering both expiry and supersession by a later login.
var ErrSessionNotFound = errors.New("session not found")
