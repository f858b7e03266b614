package config

import (
	"errors"

	"golang.org/x/oauth2/clientcredentials"
)

var ErrParagonNotConfigured = errors.New("paragon MLS credentials are not configured")

// ParagonOAuthConfig returns the client-credentials flow used against the Paragon identity server.
func ParagonOAuthConfig(p ParagonConfig) (*clientcredentials.Config, error) {
	if !p.Enabled() {
		return nil, ErrParagonNotConfigured
	}
	return &clientcredentials.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		TokenURL:     p.TokenURL,
		Scopes:       []string{p.Scope},
	}, nil
}
