package model

import "context"

// User is the client's cached copy of an identity owned by the relying party.
type User struct {
	ID          ID         `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   Timestamp  `json:"created_at"`
	LastLogin   *Timestamp `json:"last_login,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// CurrentUser is the relying party's answer to an identity check.
type CurrentUser struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// ProfileUpdate carries mutable identity fields.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
}

// IdentityService exposes the session-scoped identity calls of the relying party.
type IdentityService interface {
	Me(ctx context.Context) (CurrentUser, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error)
}
