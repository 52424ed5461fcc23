// Package apperr is the closed set of business failures the services return.
// Anything outside this set is an infrastructure error and maps to 500 at the
// boundary.
package apperr

import (
	"errors"
	"strings"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

type Error struct {
	Kind     Kind
	Messages []string
}

func (e *Error) Error() string { return strings.Join(e.Messages, "; ") }

func newError(k Kind, msgs []string) *Error {
	if len(msgs) == 0 {
		msgs = []string{"request failed"}
	}
	return &Error{Kind: k, Messages: msgs}
}

func BadRequest(msgs ...string) *Error   { return newError(KindBadRequest, msgs) }
func Unauthorized(msgs ...string) *Error { return newError(KindUnauthorized, msgs) }
func Forbidden(msgs ...string) *Error    { return newError(KindForbidden, msgs) }
func NotFound(msgs ...string) *Error     { return newError(KindNotFound, msgs) }
func Conflict(msgs ...string) *Error     { return newError(KindConflict, msgs) }

// KindOf reports the failure kind when err belongs to the taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
