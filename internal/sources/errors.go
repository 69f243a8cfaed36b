package sources

import "errors"

var (
	// errTooManyRedirects aborts upstream calls that bounce through more
	// than five redirects.
	errTooManyRedirects = errors.New("too many redirects")

	// ErrUpstreamStatus wraps a non-200 reply from a catalog API.
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)
