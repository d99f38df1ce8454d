package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	ErrorKindUnknown   ErrorKind = "unknown"
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindSheetOpen ErrorKind = "sheet_open"
	ErrorKindConfig    ErrorKind = "config"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindTimeout   ErrorKind = "timeout"
)

type Error struct {
	Kind     ErrorKind
	Platform string
	URL      string
	Msg      string
	Err      error
}

func (e Error) Error() string {
	base := e.Msg
	if base == "" && e.Err != nil {
		base = e.Err.Error()
	} else if e.Err != nil {
		base = base + ": " + e.Err.Error()
	}
	if base == "" {
		base = string(e.Kind)
	}
	if e.Platform != "" && e.URL != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Platform, base, e.URL)
	}
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s", e.Platform, base)
	}
	return base
}

func (e Error) Unwrap() error { return e.Err }

// KindOf classifies err. A timeout or cancellation anywhere in the chain wins
// over an outer typed error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var ce Error
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return ErrorKindTimeout
		}
		return ErrorKindTransport
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status=") {
		return ErrorKindTransport
	}
	return ErrorKindUnknown
}

func NewConfigError(msg string) error {
	return Error{Kind: ErrorKindConfig, Msg: msg}
}

func NewTransportError(platform, url string, err error) error {
	return Error{Kind: ErrorKindTransport, Platform: platform, URL: url, Err: err}
}

func NewSheetOpenError(name string, err error) error {
	return Error{Kind: ErrorKindSheetOpen, Platform: "sheet", URL: name, Msg: "open sheet failed", Err: err}
}

func IsConfigError(err error) bool {
	var ce Error
	return errors.As(err, &ce) && ce.Kind == ErrorKindConfig
}
