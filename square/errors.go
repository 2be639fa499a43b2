package square

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const maxErrorBodyPreview = 600

// ErrUpstream indicates a Square API failure.
var ErrUpstream = errors.New("square: upstream request failed")

// UpstreamRequestError carries HTTP context for failed upstream calls.
type UpstreamRequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamRequestError) Error() string {
	parts := []string{ErrUpstream.Error()}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.Method != "" || e.URL != "" {
		parts = append(parts, strings.TrimSpace(e.Method+" "+e.URL))
	}
	if preview := compactBodyPreview(e.Body); preview != "" {
		parts = append(parts, fmt.Sprintf("body=%q", preview))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, "; ")
}

func (e *UpstreamRequestError) Unwrap() error {
	return ErrUpstream
}

// IsRateLimited reports whether err is a Square 429 response. The sync
// pipeline treats these as soft per-object failures, never as a retry storm.
func IsRateLimited(err error) bool {
	var reqErr *UpstreamRequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// DecodeError reports a catalog object whose payload did not match its
// declared type. Unknown or missing payloads fail loudly here instead of
// propagating nils into the persistence layer.
type DecodeError struct {
	ObjectID string
	Type     ObjectType
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("square: decode object %s (type %s): %s", e.ObjectID, e.Type, e.Reason)
}

func compactBodyPreview(body string) string {
	body = strings.Join(strings.Fields(strings.TrimSpace(body)), " ")
	if len(body) > maxErrorBodyPreview {
		return body[:maxErrorBodyPreview] + "..."
	}
	return body
}
