// Package serve decides how a stored document file is delivered to a client:
// a redirect to a storage URL, streaming from local disk, or not found.
//
// Resolve is a pure function of its inputs. The serve method is read once from
// configuration at startup and passed in on every call.
package serve

import (
	"errors"
	"fmt"
	"strings"
)

// ServeMethod selects the delivery strategy.
type ServeMethod string

const (
	// MethodUnset streams from local disk. The file must have both a storage
	// URL and a local path.
	MethodUnset ServeMethod = ""
	// MethodDirect sends clients straight to the storage URL.
	MethodDirect ServeMethod = "direct"
	// MethodRedirect forces a redirect to the storage URL.
	MethodRedirect ServeMethod = "redirect"
)

// ParseServeMethod normalises a configured value. Unknown values are kept
// as-is so Resolve can reject them.
func ParseServeMethod(s string) ServeMethod {
	return ServeMethod(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether m is one of the recognised serve methods.
func (m ServeMethod) Known() bool {
	switch m {
	case MethodUnset, MethodDirect, MethodRedirect:
		return true
	}
	return false
}

func (m ServeMethod) String() string {
	if m == MethodUnset {
		return "unset"
	}
	return string(m)
}

// Locations are the two optional resolved forms of a document file.
// An empty string means the form is not available.
type Locations struct {
	RemoteURL string
	LocalPath string
}

// Outcome is the delivery path picked by Resolve.
type Outcome int

const (
	NotFound Outcome = iota
	Redirect
	LocalServe
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case LocalServe:
		return "local"
	}
	return "not_found"
}

// Decision is the result of Resolve. URL is set only for Redirect.
type Decision struct {
	Outcome Outcome
	URL     string
}

// ErrUnavailable is returned when the requested delivery path cannot be
// satisfied. The HTTP layer renders it as 404 and never retries.
var ErrUnavailable = errors.New("document unavailable")

// Resolve picks the delivery path for a file given the configured serve method.
func Resolve(method ServeMethod, loc Locations) (Decision, error) {
	switch method {
	case MethodRedirect, MethodDirect:
		if loc.RemoteURL == "" {
			return unavailable("serve method %q requires a storage URL", method)
		}
		return Decision{Outcome: Redirect, URL: loc.RemoteURL}, nil
	case MethodUnset:
		if loc.RemoteURL == "" {
			return unavailable("file has no storage URL")
		}
		if loc.LocalPath == "" {
			return unavailable("file has no local path")
		}
		return Decision{Outcome: LocalServe}, nil
	default:
		// misconfiguration is a hard failure, never a fallback to local serving
		return unavailable("unrecognised serve method %q", string(method))
	}
}

func unavailable(format string, args ...interface{}) (Decision, error) {
	return Decision{Outcome: NotFound}, fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}
