package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gorilla/mux"

	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/token"
)

const (
	RelyingPartyID     = "localhost"
	RelyingPartyOrigin = "http://localhost:3000"
	SessionCookie      = "access_token"
)

// RelyingParty is an in-memory relying-party service speaking the /api/auth
// JSON protocol. Signatures are verified with go-webauthn.
type RelyingParty struct {
	webauthn *webauthn.WebAuthn
	tokens   *token.JWT
	logger   *logger.Logger

	// FailLogout makes the logout endpoint answer 500.
	FailLogout atomic.Bool
	// RejectRegistration makes register/complete answer 400 after verification.
	RejectRegistration atomic.Bool

	mu       sync.Mutex
	users    map[int]*rpUser
	pending  map[string]*pendingCeremony
	nextUser int
	nextDev  int
}

type rpUser struct {
	id          int
	username    string
	displayName string
	createdAt   time.Time
	lastLogin   *time.Time
	devices     []*rpDevice
}

type rpDevice struct {
	id         int
	name       string
	credential webauthn.Credential
	createdAt  time.Time
	lastUsed   *time.Time
}

type pendingCeremony struct {
	session webauthn.SessionData
	user    *rpUser
}

func (u *rpUser) WebAuthnID() []byte          { return []byte(strconv.Itoa(u.id)) }
func (u *rpUser) WebAuthnName() string        { return u.username }
func (u *rpUser) WebAuthnDisplayName() string { return u.displayName }

func (u *rpUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.devices))
	for _, d := range u.devices {
		creds = append(creds, d.credential)
	}
	return creds
}

// NewRelyingParty creates a relying party for RelyingPartyID and RelyingPartyOrigin.
func NewRelyingParty(log *logger.Logger) (*RelyingParty, error) {
	w, err := webauthn.New(&webauthn.Config{
		RPID:                  RelyingPartyID,
		RPDisplayName:         "Voice Diary",
		RPOrigins:             []string{RelyingPartyOrigin},
		AttestationPreference: protocol.PreferNoAttestation,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementPreferred,
			UserVerification:        protocol.VerificationRequired,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure webauthn: %w", err)
	}

	return &RelyingParty{
		webauthn: w,
		tokens:   token.NewJWT("relying-party-secret", time.Hour),
		logger:   log,
		users:    make(map[int]*rpUser),
		pending:  make(map[string]*pendingCeremony),
	}, nil
}

// StartRelyingParty serves a new RelyingParty until the test ends.
func StartRelyingParty(t *testing.T) (*RelyingParty, *httptest.Server) {
	t.Helper()

	rp, err := NewRelyingParty(MakeNoopLogger())
	if err != nil {
		t.Fatalf("failed to create relying party: %v", err)
	}
	srv := httptest.NewServer(rp.Handler())
	t.Cleanup(srv.Close)

	return rp, srv
}

// Handler routes the /api/auth endpoints.
func (rp *RelyingParty) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/auth").Subrouter()

	api.HandleFunc("/register/start", rp.registerStart).Methods(http.MethodPost)
	api.HandleFunc("/register/complete", rp.registerComplete).Methods(http.MethodPost)
	api.HandleFunc("/login/start", rp.loginStart).Methods(http.MethodPost)
	api.HandleFunc("/login/complete", rp.loginComplete).Methods(http.MethodPost)
	api.HandleFunc("/logout", rp.logout).Methods(http.MethodPost)
	api.HandleFunc("/me", rp.authenticated(rp.me)).Methods(http.MethodGet)
	api.HandleFunc("/profile", rp.authenticated(rp.updateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/devices", rp.authenticated(rp.listDevices)).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", rp.authenticated(rp.updateDevice)).Methods(http.MethodPut)
	api.HandleFunc("/devices/{id}", rp.authenticated(rp.deleteDevice)).Methods(http.MethodDelete)

	return r
}

// UserCount returns the number of registered users.
func (rp *RelyingParty) UserCount() int {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	return len(rp.users)
}

func (rp *RelyingParty) registerStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Username is required")
		return
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.findUser(username) != nil {
		writeDetail(w, http.StatusBadRequest, "Username already exists")
		return
	}

	rp.nextUser++
	user := &rpUser{id: rp.nextUser, username: username, displayName: req.DisplayName, createdAt: time.Now()}
	if user.displayName == "" {
		user.displayName = username
	}

	creation, session, err := rp.webauthn.BeginRegistration(user)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	rp.pending[session.Challenge] = &pendingCeremony{session: *session, user: user}

	writeJSON(w, http.StatusOK, map[string]any{
		"options": creation.Response,
		"user_id": strconv.Itoa(user.id),
	})
}

func (rp *RelyingParty) registerComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CredentialID      string `json:"credential_id"`
		AttestationObject string `json:"attestation_object"`
		ClientDataJSON    string `json:"client_data_json"`
		UserID            string `json:"user_id"`
		DeviceName        string `json:"device_name"`
	}
	if !decode(w, r, &req) {
		return
	}

	body, _ := json.Marshal(map[string]any{
		"id":    req.CredentialID,
		"rawId": req.CredentialID,
		"type":  "public-key",
		"response": map[string]string{
			"attestationObject": req.AttestationObject,
			"clientDataJSON":    req.ClientDataJSON,
		},
	})
	parsed, err := protocol.ParseCredentialCreationResponseBytes(body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Registration failed: "+err.Error())
		return
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	pending, ok := rp.pending[parsed.Response.CollectedClientData.Challenge]
	if !ok || strconv.Itoa(pending.user.id) != req.UserID {
		writeDetail(w, http.StatusBadRequest, "Registration failed: unknown challenge")
		return
	}
	delete(rp.pending, parsed.Response.CollectedClientData.Challenge)

	credential, err := rp.webauthn.CreateCredential(pending.user, pending.session, parsed)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Registration failed: "+err.Error())
		return
	}
	if rp.findUser(pending.user.username) != nil {
		writeDetail(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if rp.RejectRegistration.Load() {
		writeDetail(w, http.StatusBadRequest, "Registration failed: rejected by policy")
		return
	}

	name := strings.TrimSpace(req.DeviceName)
	if name == "" {
		name = "Unknown Device"
	}
	rp.nextDev++
	pending.user.devices = append(pending.user.devices, &rpDevice{
		id:         rp.nextDev,
		name:       name,
		credential: *credential,
		createdAt:  time.Now(),
	})
	rp.users[pending.user.id] = pending.user

	rp.logger.Info("Relying party: user registered", "username", pending.user.username)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user_id": pending.user.id,
		"message": "Registration completed successfully",
	})
}

func (rp *RelyingParty) loginStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if !decode(w, r, &req) {
		return
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	var (
		assertion *protocol.CredentialAssertion
		session   *webauthn.SessionData
		user      *rpUser
		err       error
	)
	if username := strings.TrimSpace(req.Username); username != "" {
		user = rp.findUser(username)
		if user == nil {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		assertion, session, err = rp.webauthn.BeginLogin(user, webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		assertion, session, err = rp.webauthn.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	rp.pending[session.Challenge] = &pendingCeremony{session: *session, user: user}

	writeJSON(w, http.StatusOK, map[string]any{"options": assertion.Response})
}

func (rp *RelyingParty) loginComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CredentialID      string `json:"credential_id"`
		AuthenticatorData string `json:"authenticator_data"`
		ClientDataJSON    string `json:"client_data_json"`
		Signature         string `json:"signature"`
	}
	if !decode(w, r, &req) {
		return
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	owner, device := rp.findCredential(req.CredentialID)
	if owner == nil {
		writeDetail(w, http.StatusNotFound, "Credential not found")
		return
	}

	body, _ := json.Marshal(map[string]any{
		"id":    req.CredentialID,
		"rawId": req.CredentialID,
		"type":  "public-key",
		"response": map[string]string{
			"authenticatorData": req.AuthenticatorData,
			"clientDataJSON":    req.ClientDataJSON,
			"signature":         req.Signature,
			"userHandle":        protocol.URLEncodedBase64(owner.WebAuthnID()).String(),
		},
	})
	parsed, err := protocol.ParseCredentialRequestResponseBytes(body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Authentication failed: "+err.Error())
		return
	}

	challenge := parsed.Response.CollectedClientData.Challenge
	pending, ok := rp.pending[challenge]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Authentication failed: unknown challenge")
		return
	}
	delete(rp.pending, challenge)

	var credential *webauthn.Credential
	if pending.user != nil {
		if pending.user != owner {
			writeDetail(w, http.StatusBadRequest, "Authentication failed: credential does not belong to user")
			return
		}
		credential, err = rp.webauthn.ValidateLogin(owner, pending.session, parsed)
	} else {
		_, credential, err = rp.webauthn.ValidatePasskeyLogin(func(_, _ []byte) (webauthn.User, error) {
			return owner, nil
		}, pending.session, parsed)
	}
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Authentication failed: "+err.Error())
		return
	}
	if credential.Authenticator.CloneWarning {
		writeDetail(w, http.StatusBadRequest, "Authentication failed: sign count did not increase")
		return
	}

	now := time.Now()
	device.credential = *credential
	device.lastUsed = &now
	owner.lastLogin = &now

	session, err := rp.tokens.Issue(strconv.Itoa(owner.id))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	rp.logger.Info("Relying party: user authenticated", "username", owner.username)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Authentication successful",
		"user":         userJSON(owner),
		"access_token": session,
	})
}

func (rp *RelyingParty) logout(w http.ResponseWriter, _ *http.Request) {
	if rp.FailLogout.Load() {
		writeDetail(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (rp *RelyingParty) me(w http.ResponseWriter, _ *http.Request, user *rpUser) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          userJSON(user),
	})
}

func (rp *RelyingParty) updateProfile(w http.ResponseWriter, r *http.Request, user *rpUser) {
	var req struct {
		DisplayName *string `json:"display_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.DisplayName != nil {
		user.displayName = *req.DisplayName
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": userJSON(user)})
}

func (rp *RelyingParty) listDevices(w http.ResponseWriter, _ *http.Request, user *rpUser) {
	devices := make([]map[string]any, 0, len(user.devices))
	for _, d := range user.devices {
		devices = append(devices, deviceJSON(user, d))
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (rp *RelyingParty) updateDevice(w http.ResponseWriter, r *http.Request, user *rpUser) {
	device := findDevice(user, mux.Vars(r)["id"])
	if device == nil {
		writeDetail(w, http.StatusNotFound, "Device not found")
		return
	}

	var req struct {
		DeviceName *string `json:"device_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.DeviceName != nil {
		device.name = *req.DeviceName
	}

	writeJSON(w, http.StatusOK, map[string]any{"device": deviceJSON(user, device)})
}

func (rp *RelyingParty) deleteDevice(w http.ResponseWriter, r *http.Request, user *rpUser) {
	device := findDevice(user, mux.Vars(r)["id"])
	if device == nil {
		writeDetail(w, http.StatusNotFound, "Device not found")
		return
	}
	if len(user.devices) <= 1 {
		writeDetail(w, http.StatusBadRequest, "Cannot delete the last device")
		return
	}

	kept := user.devices[:0]
	for _, d := range user.devices {
		if d != device {
			kept = append(kept, d)
		}
	}
	user.devices = kept

	writeJSON(w, http.StatusOK, map[string]string{"message": "Device deleted successfully"})
}

// authenticated resolves the session cookie and runs next under the lock.
func (rp *RelyingParty) authenticated(next func(http.ResponseWriter, *http.Request, *rpUser)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		subject, err := rp.tokens.Parse(cookie.Value)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		id, err := strconv.Atoi(subject)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		rp.mu.Lock()
		defer rp.mu.Unlock()

		user, ok := rp.users[id]
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, user)
	}
}

// findUser and findCredential must be called with mu held.
func (rp *RelyingParty) findUser(username string) *rpUser {
	for _, u := range rp.users {
		if u.username == username {
			return u
		}
	}
	return nil
}

func (rp *RelyingParty) findCredential(encodedID string) (*rpUser, *rpDevice) {
	var id protocol.URLEncodedBase64
	if err := id.UnmarshalJSON([]byte(strconv.Quote(encodedID))); err != nil {
		return nil, nil
	}
	for _, u := range rp.users {
		for _, d := range u.devices {
			if bytes.Equal(d.credential.ID, id) {
				return u, d
			}
		}
	}
	return nil, nil
}

func findDevice(user *rpUser, rawID string) *rpDevice {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil
	}
	for _, d := range user.devices {
		if d.id == id {
			return d
		}
	}
	return nil
}

func userJSON(u *rpUser) map[string]any {
	out := map[string]any{
		"id":           u.id,
		"username":     u.username,
		"display_name": u.displayName,
		"is_active":    true,
		"is_admin":     false,
		// zone-less timestamp
		"created_at": u.createdAt.Format("2006-01-02T15:04:05.000000"),
	}
	if u.lastLogin != nil {
		out["last_login"] = u.lastLogin.Format(time.RFC3339Nano)
	}
	return out
}

func deviceJSON(u *rpUser, d *rpDevice) map[string]any {
	out := map[string]any{
		"id":          d.id,
		"device_name": d.name,
		"device_type": "platform",
		"username":    u.username,
		"created_at":  d.createdAt.Format(time.RFC3339Nano),
		"last_used":   nil,
	}
	if d.lastUsed != nil {
		out["last_used"] = d.lastUsed.Format(time.RFC3339Nano)
	}
	return out
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
