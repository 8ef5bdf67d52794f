package wiki

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed call for programmatic handling
type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1 // Connection failure or timeout
	KindStatus                         // Non-2xx HTTP status
	KindParse                          // Invalid JSON or unexpected shape
	KindCookie                         // Malformed Set-Cookie header
	KindAPI                            // Well-formed response carrying an API failure
)

// Sentinels for errors.Is matching on an *Error's kind
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("http status failure")
	ErrParse     = errors.New("unexpected response")
	ErrCookie    = errors.New("malformed cookie")
	ErrAPI       = errors.New("api error")
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	case KindCookie:
		return "cookie"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindStatus:
		return ErrStatus
	case KindParse:
		return ErrParse
	case KindCookie:
		return ErrCookie
	case KindAPI:
		return ErrAPI
	default:
		return nil
	}
}

// maxDisplayBody bounds how much of an offending payload goes into Error()
const maxDisplayBody = 500

// Error is the single error type returned by the request layer.
// Body always holds the full offending payload; Error() shows a truncated copy.
type Error struct {
	Kind ErrorKind
	Op   string // "GET query", "POST login", ...

	StatusCode int    // KindStatus
	Status     string // KindStatus, e.g. "503 Service Unavailable"
	Code       string // KindAPI, the error object's code or the login result
	Info       string // KindAPI, the error object's info or the login reason
	Path       string // KindParse, dotted path that failed to resolve

	Body []byte // Response body or JSON fragment
	Err  error  // Underlying cause
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.sentinel().Error())

	switch e.Kind {
	case KindStatus:
		fmt.Fprintf(&sb, " %s", e.Status)
	case KindAPI:
		if e.Code != "" {
			fmt.Fprintf(&sb, " [%s]", e.Code)
		}
		if e.Info != "" {
			fmt.Fprintf(&sb, " %s", e.Info)
		}
	case KindParse:
		if e.Path != "" {
			fmt.Fprintf(&sb, " at %s", e.Path)
		}
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if len(e.Body) > 0 {
		fmt.Fprintf(&sb, ": %s", truncate(string(e.Body), maxDisplayBody))
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrAPI) works through wrapping
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// AsError extracts the *Error from err's chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAPIError reports whether err is an API-level failure
func IsAPIError(err error) bool {
	return errors.Is(err, ErrAPI)
}

// IsParseError reports whether err is a parse or shape failure
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsRetryable reports whether the failure class is one the transport retries
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStatus)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
