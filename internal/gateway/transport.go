package gateway

import (
	"net/http"

	"golang.org/x/oauth2"
)

// CredentialSource supplies the current bearer credential, if any.
type CredentialSource interface {
	Credential() (string, bool)
}

// bearerTransport sets the Authorization header when a credential is present
// and otherwise sends the request unauthenticated.
type bearerTransport struct {
	base   http.RoundTripper
	source func() CredentialSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	src := t.source()
	if src == nil {
		return t.base.RoundTrip(req)
	}
	credential, ok := src.Credential()
	if !ok || credential == "" {
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	token := &oauth2.Token{AccessToken: credential, TokenType: "Bearer"}
	token.SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}
