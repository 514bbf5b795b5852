package model

import (
	"context"
	"errors"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
)

// CeremonyTimeout bounds a single authenticator interaction.
const CeremonyTimeout = 60 * time.Second

// RelyingPartyEntity names the relying party in registration options.
type RelyingPartyEntity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// UserEntity describes the account a credential is created for. ID is the
// transport-encoded user handle.
type UserEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CredentialDescriptor references an existing credential by its transport-encoded id.
type CredentialDescriptor struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	Transports []string `json:"transports,omitempty"`
}

// RegistrationOptions is the creation options bundle issued by register/start.
type RegistrationOptions struct {
	Challenge              string                           `json:"challenge"`
	RelyingParty           RelyingPartyEntity               `json:"rp"`
	User                   UserEntity                       `json:"user"`
	Parameters             []protocol.CredentialParameter   `json:"pubKeyCredParams"`
	AuthenticatorSelection *protocol.AuthenticatorSelection `json:"authenticatorSelection,omitempty"`
	ExcludeCredentials     []CredentialDescriptor           `json:"excludeCredentials,omitempty"`
	Attestation            protocol.ConveyancePreference    `json:"attestation,omitempty"`
	Timeout                int                              `json:"timeout,omitempty"`
}

// AuthenticationOptions is the request options bundle issued by login/start.
type AuthenticationOptions struct {
	Challenge        string                               `json:"challenge"`
	RelyingPartyID   string                               `json:"rpId,omitempty"`
	AllowCredentials []CredentialDescriptor               `json:"allowCredentials,omitempty"`
	UserVerification protocol.UserVerificationRequirement `json:"userVerification,omitempty"`
	Timeout          int                                  `json:"timeout,omitempty"`
}

// RegistrationStartRequest is the body of register/start.
type RegistrationStartRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegistrationStart is the response of register/start.
type RegistrationStart struct {
	Options RegistrationOptions `json:"options"`
	UserID  ID                  `json:"user_id"`
}

// AttestationPayload is the body of register/complete.
type AttestationPayload struct {
	CredentialID      string `json:"credential_id"`
	AttestationObject string `json:"attestation_object"`
	ClientDataJSON    string `json:"client_data_json"`
	UserID            ID     `json:"user_id"`
	DeviceName        string `json:"device_name,omitempty"`
}

// RegistrationComplete is the response of register/complete.
type RegistrationComplete struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  ID     `json:"user_id"`
}

// AuthenticationStartRequest is the body of login/start.
type AuthenticationStartRequest struct {
	Username string `json:"username,omitempty"`
}

// AuthenticationStart is the response of login/start.
type AuthenticationStart struct {
	Options AuthenticationOptions `json:"options"`
}

// AssertionPayload is the body of login/complete.
type AssertionPayload struct {
	CredentialID      string `json:"credential_id"`
	AuthenticatorData string `json:"authenticator_data"`
	ClientDataJSON    string `json:"client_data_json"`
	Signature         string `json:"signature"`
}

// AuthenticationComplete is the response of login/complete. The access token,
// when present, is never interpreted by the client.
type AuthenticationComplete struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	User        *User  `json:"user,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// CeremonyService exposes the challenge and completion endpoints of the relying party.
type CeremonyService interface {
	StartRegistration(ctx context.Context, req RegistrationStartRequest) (RegistrationStart, error)
	CompleteRegistration(ctx context.Context, payload AttestationPayload) (RegistrationComplete, error)
	StartAuthentication(ctx context.Context, req AuthenticationStartRequest) (AuthenticationStart, error)
	CompleteAuthentication(ctx context.Context, payload AssertionPayload) (AuthenticationComplete, error)
}

// RelyingParty is the complete client view of the remote relying-party service.
type RelyingParty interface {
	CeremonyService
	IdentityService
	DeviceStore
}

// Result is the uniform outcome of a ceremony-level operation.
type Result struct {
	Success bool
	Message string
	User    *User
}

// Failure converts err into an unsuccessful Result. A relying party rejection
// surfaces the server's own message.
func Failure(err error) Result {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return Result{Success: false, Message: serverErr.Message}
	}
	return Result{Success: false, Message: err.Error()}
}

// RegisterParams are the user inputs of a registration ceremony.
type RegisterParams struct {
	Username    string
	DisplayName string
	DeviceName  string
}

// CeremonyClient runs complete registration and authentication ceremonies.
// Failures are reported in the Result, never as an error.
type CeremonyClient interface {
	Register(ctx context.Context, params RegisterParams) Result
	Authenticate(ctx context.Context, username string) Result
}
