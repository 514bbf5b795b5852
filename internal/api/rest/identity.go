package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

// Me returns the identity bound to the current session cookie.
func (c *Client) Me(ctx context.Context) (model.CurrentUser, error) {
	var out model.CurrentUser
	if err := c.do(ctx, http.MethodGet, c.endpoint("me"), nil, &out); err != nil {
		return model.CurrentUser{}, err
	}
	return out, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.endpoint("logout"), nil, nil)
}

// UpdateProfile changes mutable identity fields and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, c.endpoint("profile"), update, &raw); err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := decodeEnvelope(raw, "user", &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
