package classroom

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

const (
	headerAPIKey    = "x-api-key"
	headerRequestID = "X-Request-ID"
)

// authTransport tags every outgoing request with the static API key, a
// request ID and the bearer token resolved at send time.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
	tokens driven.TokenSource // nil for the unauthenticated sign-in client.
}

func newAuthTransport(base http.RoundTripper, apiKey string, tokens driven.TokenSource) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, apiKey: apiKey, tokens: tokens}
}

// RoundTrip clones the request before adding headers; a RoundTripper must
// not modify the caller's request.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	if t.apiKey != "" {
		r.Header.Set(headerAPIKey, t.apiKey)
	}
	if r.Header.Get(headerRequestID) == "" {
		r.Header.Set(headerRequestID, uuid.NewString())
	}

	if t.tokens != nil {
		token, err := t.tokens.Token(r.Context())
		if err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, &tokenError{err: err}
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return t.base.RoundTrip(r)
}

// tokenError marks a failure to resolve the bearer token, so it is not
// reported as a network error.
type tokenError struct {
	err error
}

func (e *tokenError) Error() string {
	return fmt.Sprintf("resolve bearer token: %v", e.err)
}

func (e *tokenError) Unwrap() error {
	return e.err
}
