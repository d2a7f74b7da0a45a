package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API interaction.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnauthenticated: no token present, detected locally.
	KindUnauthenticated
	// KindAuthExpired: the API answered 401 or 403.
	KindAuthExpired
	// KindValidation: bad input detected before any call.
	KindValidation
	// KindTransient: transport failure or non-2xx status. Not retried.
	KindTransient
	// KindApplication: 2xx with an unusable payload.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// RequiresLogin reports whether errors of this kind end the session.
func (k Kind) RequiresLogin() bool {
	return k == KindUnauthenticated || k == KindAuthExpired
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrAuthExpired     = &Error{Kind: KindAuthExpired}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrTransient       = &Error{Kind: KindTransient}
	ErrApplication     = &Error{Kind: KindApplication}
)

// Error is the error type returned by the client and the workflows.
type Error struct {
	Kind    Kind
	Op      string // "POST /chatbot/send", or a workflow operation name
	Status  int    // HTTP status, when the API answered
	Message string // safe to show to the user
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Status == 0 && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindUnauthenticated, KindAuthExpired:
		return "Please sign in again."
	case KindTransient:
		return "BizMate is not reachable right now. Please try again."
	case KindApplication:
		return "BizMate sent a response we could not use."
	}
	return "Something went wrong."
}

// Validation builds a KindValidation error.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// Unauthenticated builds a KindUnauthenticated error.
func Unauthenticated(op string) *Error {
	return &Error{Kind: KindUnauthenticated, Op: op, Message: "Please sign in to continue."}
}

func transient(op string, status int, message string, err error) *Error {
	if message == "" {
		message = "BizMate is not reachable right now. Please try again."
	}
	return &Error{Kind: KindTransient, Op: op, Status: status, Message: message, Err: err}
}

func application(op, message string, err error) *Error {
	return &Error{Kind: KindApplication, Op: op, Message: message, Err: err}
}

func authExpired(op string, status int) *Error {
	return &Error{Kind: KindAuthExpired, Op: op, Status: status, Message: "Your session has expired. Please sign in again."}
}

// isOutage reports whether err says the API is unhealthy, as opposed to
// rejecting this particular request.
func isOutage(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindTransient {
		return false
	}
	return e.Status == 0 || e.Status >= 500 || e.Status == 429
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
