package companieshouse

import (
	"fmt"
	"time"
)

// TransportError wraps request failures and non-success statuses from
// the registry.
type TransportError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry request %s: %s", e.Url, e.Err)
	}
	return fmt.Sprintf("registry request %s: status %d", e.Url, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitedError is returned on http 429 so callers can back off
// instead of hammering the registry. RetryAfter is zero when the
// response did not say how long to wait.
type RateLimitedError struct {
	Url        string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s, retry after %s", e.Url, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited by %s", e.Url)
}

// MalformedPageError reports registry markup that no longer matches
// the structure the extraction rules expect. Row is the index of the
// offending result row, or -1 for page-level problems.
type MalformedPageError struct {
	Page   string
	Row    int
	Reason string
}

func (e *MalformedPageError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("malformed %s page: row %d: %s", e.Page, e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed %s page: %s", e.Page, e.Reason)
}

// UnknownEnumValueError reports display text outside the controlled
// vocabulary it was resolved against. Closest carries the nearest
// known value so registry rewordings are easy to spot in logs.
type UnknownEnumValueError struct {
	Enum    string
	Value   string
	Closest string
}

func (e *UnknownEnumValueError) Error() string {
	if e.Closest != "" {
		return fmt.Sprintf("unknown %s %q (closest known value: %q)", e.Enum, e.Value, e.Closest)
	}
	return fmt.Sprintf("unknown %s %q", e.Enum, e.Value)
}

// DateParseError reports an event cell whose trailing text did not
// parse as a "2 January 2006" date.
type DateParseError struct {
	Text string
	Err  error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse date from %q: %s", e.Text, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}
