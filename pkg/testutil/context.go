package testutil

import (
	"net/http"
	"time"

	"gatekeeper/pkg/requestcontext"
)

// AtTime pins the request's notion of "now", as the requesttime middleware
// would, so expiry checks can be driven from a test clock.
func AtTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithClientIP attaches client metadata the way the metadata middleware does.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent()))
}
