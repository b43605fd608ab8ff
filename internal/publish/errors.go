package publish

import "fmt"

type Kind string

const (
	KindConfig   Kind = "config"
	KindNotFound Kind = "not_found"
	KindFetch    Kind = "fetch"
	KindPatch    Kind = "patch"
	KindConflict Kind = "conflict"
	KindWrite    Kind = "write"
)

// Error is every failure a publish can report. Message is the
// remote-supplied reason when there was one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrConfig   = &Error{Kind: KindConfig}
	ErrNotFound = &Error{Kind: KindNotFound}
	ErrFetch    = &Error{Kind: KindFetch}
	ErrPatch    = &Error{Kind: KindPatch}
	ErrConflict = &Error{Kind: KindConflict}
	ErrWrite    = &Error{Kind: KindWrite}
)

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("publish: %s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("publish: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("publish: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
