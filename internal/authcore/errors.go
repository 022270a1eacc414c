package authcore

import "errors"

// Kind is the closed set of error categories the auth layer produces.
// Callers branch on kind, never on message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindTransientStore
	KindCapability
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransientStore:
		return "transient_store"
	case KindCapability:
		return "capability"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an error of the given kind.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrInvalidLogin is the single generic credential failure returned for
// every unresolvable username sign-in. Username misses, duplicate
// usernames, resolver failures and wrong passwords all collapse to this
// one value so responses cannot be used to enumerate accounts.
var ErrInvalidLogin = E(KindAuth, "invalid username or password")
