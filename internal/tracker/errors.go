package tracker

import (
	"errors"
	"fmt"

	"jobmate/tracker/internal/apiclient"
)

// Op names the remote call that failed.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

var opVerbs = map[Op]string{
	OpList:   "failed to load",
	OpCreate: "save failed",
	OpDelete: "delete failed",
}

// OpError is what the error slot holds. Its message is the inline text shown
// to the user.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string {
	verb := opVerbs[e.Op]
	var se *apiclient.StatusError
	if !errors.As(e.Err, &se) {
		return fmt.Sprintf("%s: %v", verb, e.Err)
	}
	if e.Op == OpCreate {
		return fmt.Sprintf("%s (%d): %s", verb, se.Code, se.Body)
	}
	return fmt.Sprintf("%s (%d)", verb, se.Code)
}

func (e *OpError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the failed response, or 0 when the
// request never got one.
func (e *OpError) StatusCode() int {
	var se *apiclient.StatusError
	if errors.As(e.Err, &se) {
		return se.Code
	}
	return 0
}
