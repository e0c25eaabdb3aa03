// Package auth builds HTTP clients authenticated with OAuth2 client
// credentials, used to fetch model artifacts from a protected registry.
package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds a whole artifact download.
const DefaultTimeout = 30 * time.Second

// Conf represents the client credentials used against the token endpoint.
// An empty ClientID disables authentication.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// Enabled reports whether credentials are configured.
func (c Conf) Enabled() bool { return c.ClientID != "" }

func (c Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}

// NewHTTPClient returns a client that attaches a bearer token to every
// request, fetching and refreshing it as needed. Without credentials a plain
// client is returned.
func NewHTTPClient(ctx context.Context, c Conf) *http.Client {
	if !c.Enabled() {
		return &http.Client{Timeout: DefaultTimeout}
	}
	cfg := c.toOauth2Config()
	client := cfg.Client(ctx)
	client.Timeout = DefaultTimeout
	return client
}
