// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"codeberg.org/yomu/mangadexkit/core/tokenmanager"
)

// Kind classifies a failed response.
type Kind int

// Response kinds. Each maps to exactly one HTTP status, except UnknownResponse.
const (
	BadRequest Kind = iota + 1
	Unauthorized
	Forbidden
	NotFound
	TooManyRequests
	InternalServerError
	ServiceUnavailable
	UnknownResponse
)

// Sentinels matched by errors.Is against an *APIError of the same kind.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrUnknownResponse     = errors.New("unknown response")
)

var (
	// ErrInvalidURL is returned when a request URL cannot be built or parsed.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidCredentials is returned by a login the token endpoint rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFailedToAuthenticate is returned by a login that failed for any other reason.
	ErrFailedToAuthenticate = errors.New("failed to authenticate")
)

// Credential errors, re-exported so that callers only need this package.
var (
	ErrNoAccessToken      = tokenmanager.ErrNoAccessToken
	ErrNoRefreshToken     = tokenmanager.ErrNoRefreshToken
	ErrNoStoredCredential = tokenmanager.ErrNoStoredCredential
)

var kindErrors = map[Kind]error{
	BadRequest:          ErrBadRequest,
	Unauthorized:        ErrUnauthorized,
	Forbidden:           ErrForbidden,
	NotFound:            ErrNotFound,
	TooManyRequests:     ErrTooManyRequests,
	InternalServerError: ErrInternalServerError,
	ServiceUnavailable:  ErrServiceUnavailable,
	UnknownResponse:     ErrUnknownResponse,
}

const noContext = "no context available"

func (k Kind) String() string {
	if err, ok := kindErrors[k]; ok {
		return err.Error()
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// MapStatus returns the kind of a non-success status code.
func MapStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return BadRequest
	case http.StatusUnauthorized:
		return Unauthorized
	case http.StatusForbidden:
		return Forbidden
	case http.StatusNotFound:
		return NotFound
	case http.StatusTooManyRequests:
		return TooManyRequests
	case http.StatusInternalServerError:
		return InternalServerError
	case http.StatusServiceUnavailable:
		return ServiceUnavailable
	default:
		return UnknownResponse
	}
}

// APIError is a response the service answered with a non-success status,
// or a request rejected locally before it was sent.
type APIError struct {
	Kind       Kind
	StatusCode int // 0 for requests rejected locally

	// Context is the raw response body, or a placeholder when it was empty or not text.
	Context string
}

// NewAPIError builds the error for a response with the given status and body.
func NewAPIError(status int, body []byte) *APIError {
	context := noContext
	if len(body) > 0 && utf8.Valid(body) {
		context = string(body)
	}

	return &APIError{
		Kind:       MapStatus(status),
		StatusCode: status,
		Context:    context,
	}
}

// NewBadRequest returns a BadRequest error for a request that was not sent.
func NewBadRequest(format string, args ...any) *APIError {
	return &APIError{Kind: BadRequest, Context: fmt.Sprintf(format, args...)}
}

func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status code: %d)", e.StatusCode)
	}

	if detail := e.Detail(); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	} else if e.StatusCode == 0 {
		b.WriteString(": ")
		b.WriteString(e.Context)
	}

	return b.String()
}

// Unwrap returns the sentinel of the error's kind.
func (e *APIError) Unwrap() error {
	return kindErrors[e.Kind]
}

// Detail returns the detail of the first error in a service error envelope, if any.
func (e *APIError) Detail() string {
	if !gjson.Valid(e.Context) {
		return ""
	}

	return gjson.Get(e.Context, "errors.0.detail").String()
}

// DecodeError is returned when a success response could not be decoded.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return "failed to decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
