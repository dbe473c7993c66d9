package domain

import "errors"

// Domain errors - used across all layers.
// Adapters wrap these with fmt.Errorf("%w: ...") and handlers map them with errors.Is.
var (
	// ErrNotFound indicates the requested file does not exist or the identifier is malformed
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates the input has the wrong shape, suffix, or is missing a field
	ErrBadRequest = errors.New("bad request")

	// ErrParse indicates the uploaded content is not valid CSV
	ErrParse = errors.New("parse error")

	// ErrUpstream indicates the completion service failed or is not configured
	ErrUpstream = errors.New("upstream error")

	// ErrStore indicates the persistence layer failed
	ErrStore = errors.New("store error")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrorKind is the category reported to API callers
type ErrorKind string

const (
	KindBadRequest   ErrorKind = "bad_request"
	KindParse        ErrorKind = "parse_error"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindUpstream     ErrorKind = "upstream_error"
	KindStore        ErrorKind = "store_error"
	KindInternal     ErrorKind = "internal_error"
)

// KindOf classifies err by the first matching domain sentinel in its chain.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrStore):
		return KindStore
	default:
		return KindInternal
	}
}
