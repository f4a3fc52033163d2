// Package ldaperr defines the error taxonomy the dispatcher funnels every
// failure through on its way to an LDAP result PDU.
package ldaperr

import "fmt"

// Code is an LDAP result code, per RFC 4511.
type Code int

const (
	Success                     Code = 0
	OperationsError             Code = 1
	ProtocolError               Code = 2
	CompareFalse                Code = 5
	CompareTrue                 Code = 6
	AuthMethodNotSupported      Code = 7
	UnavailableCriticalExtension Code = 12
	NoSuchAttribute             Code = 16
	InvalidDNSyntax             Code = 34
	NoSuchObject                Code = 32
	InvalidCredentials          Code = 49
	InsufficientAccessRights    Code = 50
	Other                       Code = 80
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case OperationsError:
		return "operationsError"
	case ProtocolError:
		return "protocolError"
	case CompareFalse:
		return "compareFalse"
	case CompareTrue:
		return "compareTrue"
	case AuthMethodNotSupported:
		return "authMethodNotSupported"
	case UnavailableCriticalExtension:
		return "unavailableCriticalExtension"
	case NoSuchAttribute:
		return "noSuchAttribute"
	case InvalidDNSyntax:
		return "invalidDNSyntax"
	case NoSuchObject:
		return "noSuchObject"
	case InvalidCredentials:
		return "invalidCredentials"
	case InsufficientAccessRights:
		return "insufficientAccessRights"
	default:
		return "other"
	}
}

// Error wraps a Code with a diagnostic message and, optionally, the
// lower-level cause. Dispatch code type-switches on *Error to pick the
// result code for the response PDU; anything else surfaces as Other.
type Error struct {
	Code       Code
	MatchedDN  string
	Message    string
	Cause      error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError coerces any error into an *Error, mapping unrecognized failures
// to Other so the dispatcher always has a Code to answer with.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*Error); ok {
		return le
	}
	return &Error{Code: Other, Message: "unhandled error", Cause: err}
}
