package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

// defaultTokenLifetime applies when the server omits expires_in; issued
// access tokens live one hour.
const defaultTokenLifetime = time.Hour

type AuthAPI struct {
	c *Client
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (a AuthAPI) Login(ctx context.Context, email, password string) (domain.CredentialRecord, error) {
	values := url.Values{}
	// The token endpoint follows the OAuth2 password grant shape, so the
	// email travels as "username".
	values.Set("username", email)
	values.Set("password", password)

	var payload tokenResponse
	if err := a.c.postForm(ctx, "/auth/token", values, &payload); err != nil {
		return domain.CredentialRecord{}, err
	}

	return a.recordFromResponse(payload), nil
}

func (a AuthAPI) Renew(ctx context.Context, refreshToken string) (domain.CredentialRecord, error) {
	values := url.Values{}
	values.Set("refresh_token", refreshToken)

	var payload tokenResponse
	if err := a.c.postForm(ctx, "/auth/refresh", values, &payload); err != nil {
		return domain.CredentialRecord{}, err
	}

	return a.recordFromResponse(payload), nil
}

func (a AuthAPI) recordFromResponse(payload tokenResponse) domain.CredentialRecord {
	lifetime := defaultTokenLifetime
	if payload.ExpiresIn > 0 {
		lifetime = time.Duration(payload.ExpiresIn) * time.Second
	}

	return domain.CredentialRecord{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    a.c.now().Add(lifetime),
	}
}
