package model

import (
	"context"
	"time"
)

// StoredCredential is a passkey held by the software authenticator.
type StoredCredential struct {
	ID              []byte
	RelyingPartyID  string
	UserHandle      []byte
	UserName        string
	UserDisplayName string
	PrivateKey      []byte // PKCS#8 DER
	SignCount       uint32
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}

// CredentialVault persists the software authenticator's key material.
type CredentialVault interface {
	Create(ctx context.Context, cred StoredCredential) error
	GetByID(ctx context.Context, id []byte) (StoredCredential, error)
	ListByRelyingParty(ctx context.Context, rpID string) ([]StoredCredential, error)
	IncrementSignCount(ctx context.Context, id []byte, usedAt time.Time) (uint32, error)
	Delete(ctx context.Context, id []byte) error
}
