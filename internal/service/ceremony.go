package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameyamatmk/voice-diary/internal/codec"
	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
)

const (
	tracerName = "github.com/ameyamatmk/voice-diary/internal/service"

	registrationSucceeded   = "Registration completed successfully"
	authenticationSucceeded = "Authentication successful"
)

var _ model.CeremonyClient = (*Ceremony)(nil)

// Ceremony drives registration and authentication against the relying party
// and the platform authenticator. It never touches session state.
type Ceremony struct {
	rp            model.CeremonyService
	authenticator model.Authenticator
	timeout       time.Duration
	tracer        trace.Tracer
	logger        *logger.Logger
}

func NewCeremony(
	rp model.CeremonyService,
	authenticator model.Authenticator,
	timeout time.Duration,
	logger *logger.Logger,
) *Ceremony {
	if timeout <= 0 {
		timeout = model.CeremonyTimeout
	}
	return &Ceremony{
		rp:            rp,
		authenticator: authenticator,
		timeout:       timeout,
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
	}
}

// Register provisions a new credential for params.Username. It does not
// start a session.
func (c *Ceremony) Register(ctx context.Context, params model.RegisterParams) model.Result {
	ctx, span := c.tracer.Start(ctx, "Ceremony.Register")
	defer span.End()

	c.logger.Debug("Ceremony: starting registration",
		"username", params.Username)

	res, err := c.register(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		c.logger.Error("Ceremony: registration failed",
			"username", params.Username,
			"error", err.Error())
		return model.Failure(err)
	}

	c.logger.Info("Ceremony: registration completed",
		"username", params.Username)

	return res
}

func (c *Ceremony) register(ctx context.Context, params model.RegisterParams) (model.Result, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return model.Result{}, model.NewErrInvalidInput("username is required")
	}
	if c.authenticator == nil || !c.authenticator.Available() {
		return model.Result{}, model.ErrUnsupportedPlatform
	}

	start, err := c.rp.StartRegistration(ctx, model.RegistrationStartRequest{
		Username:    username,
		DisplayName: strings.TrimSpace(params.DisplayName),
	})
	if err != nil {
		return model.Result{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("user_id", start.UserID.String()))

	req, err := c.creationRequest(start.Options)
	if err != nil {
		return model.Result{}, err
	}

	cred, err := c.authenticator.Create(ctx, req)
	if err != nil {
		return model.Result{}, err
	}

	complete, err := c.rp.CompleteRegistration(ctx, model.AttestationPayload{
		CredentialID:      codec.Encode(cred.RawID),
		AttestationObject: codec.Encode(cred.AttestationObject),
		ClientDataJSON:    codec.Encode(cred.ClientDataJSON),
		UserID:            start.UserID,
		DeviceName:        strings.TrimSpace(params.DeviceName),
	})
	if err == nil && !complete.Success {
		err = rejected(complete.Message, "registration was not accepted")
	}
	if err != nil {
		c.discard(ctx, cred.RawID)
		return model.Result{}, err
	}

	message := complete.Message
	if message == "" {
		message = registrationSucceeded
	}
	return model.Result{Success: true, Message: message}, nil
}

func (c *Ceremony) creationRequest(opts model.RegistrationOptions) (model.CreationRequest, error) {
	challenge, err := codec.Decode(opts.Challenge)
	if err != nil {
		return model.CreationRequest{}, fmt.Errorf("failed to decode challenge: %w", err)
	}
	userHandle, err := codec.Decode(opts.User.ID)
	if err != nil {
		return model.CreationRequest{}, fmt.Errorf("failed to decode user handle: %w", err)
	}

	exclude := make([]string, 0, len(opts.ExcludeCredentials))
	for _, d := range opts.ExcludeCredentials {
		exclude = append(exclude, d.ID)
	}
	excludeIDs, err := codec.DecodeAll(exclude)
	if err != nil {
		return model.CreationRequest{}, fmt.Errorf("failed to decode excluded credentials: %w", err)
	}

	algorithms := make([]webauthncose.COSEAlgorithmIdentifier, 0, len(opts.Parameters))
	for _, p := range opts.Parameters {
		algorithms = append(algorithms, p.Algorithm)
	}

	var selection protocol.AuthenticatorSelection
	if opts.AuthenticatorSelection != nil {
		selection = *opts.AuthenticatorSelection
	}

	attestation := opts.Attestation
	if attestation == "" {
		attestation = protocol.PreferDirectAttestation
	}

	return model.CreationRequest{
		Challenge:              challenge,
		RelyingPartyID:         opts.RelyingParty.ID,
		RelyingPartyName:       opts.RelyingParty.Name,
		UserHandle:             userHandle,
		UserName:               opts.User.Name,
		UserDisplayName:        opts.User.DisplayName,
		Algorithms:             algorithms,
		AuthenticatorSelection: selection,
		ExcludeCredentials:     excludeIDs,
		Attestation:            attestation,
		Timeout:                c.timeout,
	}, nil
}

// Authenticate asserts a credential and returns the identity the relying
// party resolved. An empty username runs the discoverable flow.
func (c *Ceremony) Authenticate(ctx context.Context, username string) model.Result {
	ctx, span := c.tracer.Start(ctx, "Ceremony.Authenticate",
		trace.WithAttributes(attribute.Bool("discoverable", strings.TrimSpace(username) == "")))
	defer span.End()

	c.logger.Debug("Ceremony: starting authentication",
		"username", username)

	res, err := c.authenticate(ctx, strings.TrimSpace(username))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		c.logger.Error("Ceremony: authentication failed",
			"username", username,
			"error", err.Error())
		return model.Failure(err)
	}

	c.logger.Info("Ceremony: authentication completed",
		"username", res.User.Username)

	return res
}

func (c *Ceremony) authenticate(ctx context.Context, username string) (model.Result, error) {
	if c.authenticator == nil || !c.authenticator.Available() {
		return model.Result{}, model.ErrUnsupportedPlatform
	}

	start, err := c.rp.StartAuthentication(ctx, model.AuthenticationStartRequest{Username: username})
	if err != nil {
		return model.Result{}, err
	}

	req, err := c.assertionRequest(start.Options)
	if err != nil {
		return model.Result{}, err
	}

	cred, err := c.authenticator.Get(ctx, req)
	if err != nil {
		return model.Result{}, err
	}

	complete, err := c.rp.CompleteAuthentication(ctx, model.AssertionPayload{
		CredentialID:      codec.Encode(cred.RawID),
		AuthenticatorData: codec.Encode(cred.AuthenticatorData),
		ClientDataJSON:    codec.Encode(cred.ClientDataJSON),
		Signature:         codec.Encode(cred.Signature),
	})
	if err != nil {
		return model.Result{}, err
	}
	if !complete.Success {
		return model.Result{}, rejected(complete.Message, "authentication was not accepted")
	}
	if complete.User == nil {
		return model.Result{}, errors.New("relying party did not return the signed-in user")
	}

	message := complete.Message
	if message == "" {
		message = authenticationSucceeded
	}
	return model.Result{Success: true, Message: message, User: complete.User}, nil
}

func (c *Ceremony) assertionRequest(opts model.AuthenticationOptions) (model.AssertionRequest, error) {
	challenge, err := codec.Decode(opts.Challenge)
	if err != nil {
		return model.AssertionRequest{}, fmt.Errorf("failed to decode challenge: %w", err)
	}

	allow := make([]string, 0, len(opts.AllowCredentials))
	for _, d := range opts.AllowCredentials {
		allow = append(allow, d.ID)
	}
	allowIDs, err := codec.DecodeAll(allow)
	if err != nil {
		return model.AssertionRequest{}, fmt.Errorf("failed to decode allowed credentials: %w", err)
	}

	return model.AssertionRequest{
		Challenge:        challenge,
		RelyingPartyID:   opts.RelyingPartyID,
		AllowCredentials: allowIDs,
		UserVerification: opts.UserVerification,
		Timeout:          c.timeout,
	}, nil
}

// discard removes a credential the relying party never accepted so it is not
// offered again in account selection.
func (c *Ceremony) discard(ctx context.Context, credentialID []byte) {
	if err := c.authenticator.Discard(context.WithoutCancel(ctx), credentialID); err != nil {
		c.logger.Warn("Ceremony: failed to discard unregistered credential",
			"error", err.Error())
	}
}

// rejected reports a 2xx completion whose body says it did not succeed.
func rejected(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return &model.ServerError{Status: http.StatusOK, Message: message}
}
