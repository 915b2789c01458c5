package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/zeptools/invoicing-core/requests"
	"github.com/zeptools/invoicing-core/responses"
	"github.com/zeptools/invoicing-core/routing"
	"github.com/zeptools/invoicing-core/throttle"
	"github.com/zeptools/invoicing-core/web/session"
)

// SessionAuthWrapper resolves the web session cookie and stashes the
// identity in the request context. No session means 401, a session
// without module access means 403.
type SessionAuthWrapper struct {
	Sessions *session.Manager
}

// Ensure SessionAuthWrapper implements routing.HandlerWrapper
var _ routing.HandlerWrapper = (*SessionAuthWrapper)(nil)

func (sw *SessionAuthWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := sw.Sessions.Resolve(r.Context(), r)
		if !ok {
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "sign-in required")
			return
		}
		if !id.ModuleAccess {
			responses.WriteSimpleErrorJSON(w, http.StatusForbidden, "invoicing module not enabled")
			return
		}
		inner.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
	})
}

// ThrottleWrapper rate-limits by client IP against one bucket group.
type ThrottleWrapper struct {
	Buckets *throttle.BucketStore[string]
	GroupID string
}

// Ensure ThrottleWrapper implements routing.HandlerWrapper
var _ routing.HandlerWrapper = (*ThrottleWrapper)(nil)

func (tw *ThrottleWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tw.Buckets.Allow(tw.GroupID, requests.GetClientIP(r), time.Now()) {
			responses.WriteSimpleErrorJSON(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		inner.ServeHTTP(w, r)
	})
}

// AccessLogWrapper logs one line per request
type AccessLogWrapper struct{}

// Ensure AccessLogWrapper implements routing.HandlerWrapper
var _ routing.HandlerWrapper = (*AccessLogWrapper)(nil)

func (lw *AccessLogWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		inner.ServeHTTP(w, r)
		log.Printf("[INFO][Web] %s %s from %s in %v",
			r.Method, requests.FullURL(r), requests.GetClientIP(r), time.Since(started))
	})
}
