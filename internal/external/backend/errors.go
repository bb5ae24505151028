package backend

import (
	"github.com/cockroachdb/errors"
)

// Error taxonomy of the backend boundary. Callers test with errors.Is.
var (
	// ErrNetworkFailure covers transport errors, timeouts and non-200 responses
	ErrNetworkFailure = errors.New("backend network failure")
	// ErrMalformedData covers bodies that do not match the expected JSON shape
	ErrMalformedData = errors.New("backend malformed data")
)

// Kind classifies err for logs and metrics
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedData):
		return "malformed"
	case errors.Is(err, ErrNetworkFailure):
		return "network"
	default:
		return "unknown"
	}
}

func networkFailure(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrNetworkFailure)
}

func malformed(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrMalformedData)
}
