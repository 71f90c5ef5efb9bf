package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// New returns a client for the backend integrations. Both backends are
// latency-sensitive fallback paths, so a missing timeout is replaced
// rather than allowed to hang a resolution.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
