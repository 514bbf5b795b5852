package rest

import (
	"context"
	"net/http"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

// StartRegistration requests a fresh challenge and creation options.
func (c *Client) StartRegistration(ctx context.Context, req model.RegistrationStartRequest) (model.RegistrationStart, error) {
	var out model.RegistrationStart
	if err := c.do(ctx, http.MethodPost, c.endpoint("register", "start"), req, &out); err != nil {
		return model.RegistrationStart{}, err
	}
	return out, nil
}

// CompleteRegistration submits the attestation produced by the authenticator.
func (c *Client) CompleteRegistration(ctx context.Context, payload model.AttestationPayload) (model.RegistrationComplete, error) {
	var out model.RegistrationComplete
	if err := c.do(ctx, http.MethodPost, c.endpoint("register", "complete"), payload, &out); err != nil {
		return model.RegistrationComplete{}, err
	}
	return out, nil
}

// StartAuthentication requests a fresh challenge, optionally scoped to a username.
func (c *Client) StartAuthentication(ctx context.Context, req model.AuthenticationStartRequest) (model.AuthenticationStart, error) {
	var out model.AuthenticationStart
	if err := c.do(ctx, http.MethodPost, c.endpoint("login", "start"), req, &out); err != nil {
		return model.AuthenticationStart{}, err
	}
	return out, nil
}

// CompleteAuthentication submits the assertion; on success the service sets
// the session cookie.
func (c *Client) CompleteAuthentication(ctx context.Context, payload model.AssertionPayload) (model.AuthenticationComplete, error) {
	var out model.AuthenticationComplete
	if err := c.do(ctx, http.MethodPost, c.endpoint("login", "complete"), payload, &out); err != nil {
		return model.AuthenticationComplete{}, err
	}
	return out, nil
}
