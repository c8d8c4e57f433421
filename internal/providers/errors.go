package providers

import (
	"errors"
	"fmt"
	"net"
)

// ErrSchemaValidation indicates an upstream payload did not have the expected
// shape. The whole batch is discarded when this happens.
var ErrSchemaValidation = errors.New("catalog payload failed schema validation")

// StatusError is a non-2xx response from a catalog endpoint.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog request %s: HTTP %d", e.URL, e.StatusCode)
}

// isRetryableError reports whether a failed fetch is worth repeating:
// network failures, rate limiting and server errors.
func isRetryableError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 429 || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
