// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into the audit log.
package queue

import "time"

// Event names published by the auth flows.
const (
    EventRegistered = "user.registered"
    EventLogin      = "user.login"
    EventLogout     = "user.logout"
)

// AuthEvent is published after a completed auth flow.  It carries enough for
// downstream consumers to log or feed analytics without querying the primary
// database.  Logout events carry no email because the flow only resolves the
// subject id.
type AuthEvent struct {
    Event  string    `json:"event"`
    UserID uint64    `json:"user_id"`
    Email  string    `json:"email,omitempty"`
    At     time.Time `json:"at"`
}
