package model

import (
	"context"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
)

// CreationRequest asks the platform authenticator for a new credential.
type CreationRequest struct {
	Challenge              []byte
	RelyingPartyID         string
	RelyingPartyName       string
	UserHandle             []byte
	UserName               string
	UserDisplayName        string
	Algorithms             []webauthncose.COSEAlgorithmIdentifier
	AuthenticatorSelection protocol.AuthenticatorSelection
	ExcludeCredentials     [][]byte
	Attestation            protocol.ConveyancePreference
	Timeout                time.Duration
}

// AssertionRequest asks the platform authenticator to sign a challenge. An
// empty AllowCredentials list means any discoverable credential may answer.
type AssertionRequest struct {
	Challenge        []byte
	RelyingPartyID   string
	AllowCredentials [][]byte
	UserVerification protocol.UserVerificationRequirement
	Timeout          time.Duration
}

// AttestationCredential is the authenticator's answer to a CreationRequest.
type AttestationCredential struct {
	RawID             []byte
	AttestationObject []byte
	ClientDataJSON    []byte
}

// AssertionCredential is the authenticator's answer to an AssertionRequest.
type AssertionCredential struct {
	RawID             []byte
	AuthenticatorData []byte
	ClientDataJSON    []byte
	Signature         []byte
	UserHandle        []byte
}

// Authenticator is the platform public-key credential capability. Create and
// Get suspend until the user completes or cancels local verification.
type Authenticator interface {
	Available() bool
	Create(ctx context.Context, req CreationRequest) (AttestationCredential, error)
	Get(ctx context.Context, req AssertionRequest) (AssertionCredential, error)
	// Discard forgets a credential made by Create that the relying party did
	// not accept. Unknown ids are not an error.
	Discard(ctx context.Context, credentialID []byte) error
}
