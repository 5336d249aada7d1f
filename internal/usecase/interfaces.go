package usecase

import "time"

// Publisher pushes a named event to every open stream of one user.
// Delivery is best-effort: a user with no open streams is a no-op.
type Publisher interface {
	Publish(userID, event string, payload interface{})
}

// Event names carried on the stream.
const (
	EventMessage = "message"
	EventRead    = "read"
	EventUnread  = "unread"
)

// TokenGenerator mints session tokens after login or email verification.
type TokenGenerator interface {
	GenerateToken(userID, username string) (string, error)
}

// Limiter throttles per-user actions.
type Limiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
