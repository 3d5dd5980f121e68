package fanout

import "errors"

// Failure classifications for rejected events. All of them are surfaced
// before any write happens, so a rejected event leaves no partial rows.
var (
	// ErrActorNotFound means the event's actorId does not reference an
	// existing user.
	ErrActorNotFound = errors.New("actor not found")
	// ErrFolloweeNotFound means a new_follow event named a followee that
	// does not exist.
	ErrFolloweeNotFound = errors.New("followee not found")
	// ErrNoPostAvailable means a new_like event found no post to like.
	ErrNoPostAvailable = errors.New("no post available to like")
	// ErrValidation means a required event field was missing.
	ErrValidation = errors.New("invalid event")
)
