package authenticator

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"

	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
)

const credentialIDLength = 32

var _ model.Authenticator = (*Soft)(nil)

// Config holds the settings of a software authenticator.
type Config struct {
	// Origin is written into client data; relying parties compare it to their own.
	Origin string
	// RelyingPartyID is used when a request does not name one.
	RelyingPartyID string
}

// Soft is a software platform authenticator keeping ES256 keys in a
// device-local vault. It is meant for terminals without a hardware
// authenticator and for tests; keys are not hardware protected.
type Soft struct {
	vault    model.CredentialVault
	prompter Prompter
	cfg      Config
	logger   *logger.Logger
	now      func() time.Time
}

func NewSoft(vault model.CredentialVault, prompter Prompter, cfg Config, logger *logger.Logger) *Soft {
	return &Soft{
		vault:    vault,
		prompter: prompter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Available reports whether the authenticator can serve requests.
func (s *Soft) Available() bool {
	return s != nil && s.vault != nil && s.prompter != nil
}

// Create makes a new discoverable credential and returns it with "none" attestation.
func (s *Soft) Create(ctx context.Context, req model.CreationRequest) (model.AttestationCredential, error) {
	if !s.Available() {
		return model.AttestationCredential{}, model.ErrUnsupportedPlatform
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.Timeout))
	defer cancel()
	if err := ctx.Err(); err != nil {
		return model.AttestationCredential{}, verificationError(ctx, err)
	}

	rpID := s.relyingPartyID(req.RelyingPartyID)
	s.logger.Debug("Authenticator: create requested", "rp_id", rpID, "user", req.UserName)

	if len(req.Algorithms) > 0 && !slices.Contains(req.Algorithms, webauthncose.AlgES256) {
		s.logger.Warn("Authenticator: no supported algorithm", "rp_id", rpID)
		return model.AttestationCredential{}, model.ErrNotAllowed
	}
	if len(req.UserHandle) == 0 {
		return model.AttestationCredential{}, model.NewErrInvalidInput("user handle is required")
	}

	existing, err := s.vault.ListByRelyingParty(ctx, rpID)
	if err != nil {
		return model.AttestationCredential{}, fmt.Errorf("failed to list credentials: %w", err)
	}
	for _, cred := range existing {
		if bytes.Equal(cred.UserHandle, req.UserHandle) || containsID(req.ExcludeCredentials, cred.ID) {
			s.logger.Info("Authenticator: credential already present", "rp_id", rpID, "user", cred.UserName)
			return model.AttestationCredential{}, model.ErrInvalidState
		}
	}

	name := req.UserDisplayName
	if name == "" {
		name = req.UserName
	}
	ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("Create a passkey for %q on %s?", name, rpID))
	if err != nil {
		return model.AttestationCredential{}, verificationError(ctx, err)
	}
	if !ok {
		s.logger.Info("Authenticator: create declined", "rp_id", rpID)
		return model.AttestationCredential{}, model.ErrUserCancelled
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return model.AttestationCredential{}, fmt.Errorf("failed to generate key: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return model.AttestationCredential{}, fmt.Errorf("failed to marshal key: %w", err)
	}

	credentialID := make([]byte, credentialIDLength)
	if _, err := rand.Read(credentialID); err != nil {
		return model.AttestationCredential{}, fmt.Errorf("failed to generate credential id: %w", err)
	}

	attested, err := attestedCredentialData(credentialID, &key.PublicKey)
	if err != nil {
		return model.AttestationCredential{}, err
	}
	authData := authenticatorData(rpID, flagUserPresent|flagUserVerified|flagAttestedData, 0, attested)

	attestation, err := encodeAttestation(authData)
	if err != nil {
		return model.AttestationCredential{}, err
	}
	clientData, err := clientDataJSON(protocol.CreateCeremony, req.Challenge, s.cfg.Origin)
	if err != nil {
		return model.AttestationCredential{}, err
	}

	err = s.vault.Create(ctx, model.StoredCredential{
		ID:              credentialID,
		RelyingPartyID:  rpID,
		UserHandle:      req.UserHandle,
		UserName:        req.UserName,
		UserDisplayName: req.UserDisplayName,
		PrivateKey:      der,
		CreatedAt:       s.now(),
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidState) {
			return model.AttestationCredential{}, err
		}
		return model.AttestationCredential{}, fmt.Errorf("failed to store credential: %w", err)
	}

	s.logger.Info("Authenticator: credential created", "rp_id", rpID, "user", req.UserName)

	return model.AttestationCredential{
		RawID:             credentialID,
		AttestationObject: attestation,
		ClientDataJSON:    clientData,
	}, nil
}

// Get signs the challenge with a credential for the relying party. An empty
// allow list lets the user pick any discoverable credential.
func (s *Soft) Get(ctx context.Context, req model.AssertionRequest) (model.AssertionCredential, error) {
	if !s.Available() {
		return model.AssertionCredential{}, model.ErrUnsupportedPlatform
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.Timeout))
	defer cancel()
	if err := ctx.Err(); err != nil {
		return model.AssertionCredential{}, verificationError(ctx, err)
	}

	rpID := s.relyingPartyID(req.RelyingPartyID)
	s.logger.Debug("Authenticator: assertion requested", "rp_id", rpID, "allowed", len(req.AllowCredentials))

	stored, err := s.vault.ListByRelyingParty(ctx, rpID)
	if err != nil {
		return model.AssertionCredential{}, fmt.Errorf("failed to list credentials: %w", err)
	}

	candidates := stored
	if len(req.AllowCredentials) > 0 {
		candidates = slices.DeleteFunc(slices.Clone(stored), func(c model.StoredCredential) bool {
			return !containsID(req.AllowCredentials, c.ID)
		})
	}
	if len(candidates) == 0 {
		s.logger.Info("Authenticator: no matching credential", "rp_id", rpID)
		return model.AssertionCredential{}, model.ErrNotAllowed
	}

	cred, err := s.pick(ctx, rpID, candidates)
	if err != nil {
		return model.AssertionCredential{}, err
	}

	key, err := parseKey(cred.PrivateKey)
	if err != nil {
		return model.AssertionCredential{}, err
	}

	count, err := s.vault.IncrementSignCount(ctx, cred.ID, s.now())
	if err != nil {
		return model.AssertionCredential{}, fmt.Errorf("failed to update sign count: %w", err)
	}

	authData := authenticatorData(rpID, flagUserPresent|flagUserVerified, count, nil)
	clientData, err := clientDataJSON(protocol.AssertCeremony, req.Challenge, s.cfg.Origin)
	if err != nil {
		return model.AssertionCredential{}, err
	}

	clientHash := sha256.Sum256(clientData)
	digest := sha256.Sum256(append(slices.Clone(authData), clientHash[:]...))
	signature, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return model.AssertionCredential{}, fmt.Errorf("failed to sign assertion: %w", err)
	}

	s.logger.Info("Authenticator: assertion signed", "rp_id", rpID, "user", cred.UserName, "sign_count", count)

	return model.AssertionCredential{
		RawID:             cred.ID,
		AuthenticatorData: authData,
		ClientDataJSON:    clientData,
		Signature:         signature,
		UserHandle:        cred.UserHandle,
	}, nil
}

// Discard deletes a credential created by Create. It is called when the
// relying party rejects the registration that produced it.
func (s *Soft) Discard(ctx context.Context, credentialID []byte) error {
	if !s.Available() {
		return model.ErrUnsupportedPlatform
	}

	cred, err := s.vault.GetByID(ctx, credentialID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up credential: %w", err)
	}

	err = s.vault.Delete(ctx, credentialID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	s.logger.Info("Authenticator: credential discarded", "rp_id", cred.RelyingPartyID, "user", cred.UserName)

	return nil
}

// pick runs user verification and, with several candidates, account selection.
func (s *Soft) pick(ctx context.Context, rpID string, candidates []model.StoredCredential) (model.StoredCredential, error) {
	if len(candidates) == 1 {
		cred := candidates[0]
		ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("Sign in to %s as %q?", rpID, accountLabel(cred)))
		if err != nil {
			return model.StoredCredential{}, verificationError(ctx, err)
		}
		if !ok {
			return model.StoredCredential{}, model.ErrUserCancelled
		}
		return cred, nil
	}

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = accountLabel(c)
	}
	idx, err := s.prompter.Choose(ctx, fmt.Sprintf("Choose an account for %s", rpID), labels)
	if err != nil {
		return model.StoredCredential{}, verificationError(ctx, err)
	}
	if idx < 0 || idx >= len(candidates) {
		return model.StoredCredential{}, model.ErrUserCancelled
	}
	return candidates[idx], nil
}

func (s *Soft) relyingPartyID(requested string) string {
	if requested != "" {
		return requested
	}
	return s.cfg.RelyingPartyID
}

func accountLabel(c model.StoredCredential) string {
	if c.UserDisplayName != "" && c.UserDisplayName != c.UserName {
		return fmt.Sprintf("%s (%s)", c.UserDisplayName, c.UserName)
	}
	return c.UserName
}

func parseKey(der []byte) (*ecdsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("stored key is %T, want ECDSA", parsed)
	}
	return key, nil
}

func containsID(ids [][]byte, id []byte) bool {
	return slices.ContainsFunc(ids, func(candidate []byte) bool {
		return bytes.Equal(candidate, id)
	})
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return model.CeremonyTimeout
	}
	return d
}

// verificationError maps an interrupted prompt to the platform error kinds.
func verificationError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.ErrNotAllowed
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return model.ErrUserCancelled
	case errors.Is(err, model.ErrUserCancelled):
		return err
	default:
		return fmt.Errorf("%w: %v", model.ErrUserCancelled, err)
	}
}
