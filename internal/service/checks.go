package service

import (
	"github.com/google/uuid"

	"github.com/fritter-app/fritter/internal/models"
)

// Caller identifies the user behind a request. It is built from the request
// context by the HTTP layer and passed explicitly into every operation; the
// services never reach into ambient state for identity.
type Caller struct {
	UserID        string
	Authenticated bool
}

// check is one step of an operation's validation chain.
type check func() error

// runChecks evaluates checks left-to-right and stops at the first failure.
// The order is part of each operation's contract: the first failing check
// determines the error kind the caller observes.
func runChecks(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// requireAuthenticated fails unless the caller is logged in.
func requireAuthenticated(caller Caller) check {
	return func() error {
		if !caller.Authenticated {
			return models.ErrForbidden("you must be logged in to do that")
		}
		return nil
	}
}

// validUserID fails when the id is not a well-formed user id. Malformed ids
// are rejected before any existence lookup so the error code never leaks
// whether the id exists.
func validUserID(userID string) check {
	return func() error {
		if _, err := uuid.Parse(userID); err != nil {
			return models.ErrValidation("%s is not a valid user id", userID)
		}
		return nil
	}
}

// validFreetID fails when the id is not a well-formed freet id.
func validFreetID(freetID string) check {
	return func() error {
		if _, err := uuid.Parse(freetID); err != nil {
			return models.ErrValidation("%s is not a valid freet id", freetID)
		}
		return nil
	}
}
