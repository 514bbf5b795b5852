package authenticator

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"

	"github.com/ameyamatmk/voice-diary/internal/codec"
)

const (
	flagUserPresent  byte = 0x01
	flagUserVerified byte = 0x04
	flagAttestedData byte = 0x40

	coseKeyTypeEC2   = 2
	coseCurveP256    = 1
	coordinateLength = 32
)

// aaguid identifies this authenticator model; all zeros is the "none" convention.
var aaguid = make([]byte, 16)

var ctap2 cbor.EncMode

func init() {
	var err error
	ctap2, err = cbor.CTAP2EncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("authenticator: cbor encoder: %v", err))
	}
}

type attestationObject struct {
	Format    string         `cbor:"fmt"`
	Statement map[string]any `cbor:"attStmt"`
	AuthData  []byte         `cbor:"authData"`
}

// authenticatorData lays out rpIdHash | flags | signCount | attestedCredentialData.
func authenticatorData(rpID string, flags byte, signCount uint32, attested []byte) []byte {
	rpHash := sha256.Sum256([]byte(rpID))

	out := make([]byte, 0, len(rpHash)+1+4+len(attested))
	out = append(out, rpHash[:]...)
	out = append(out, flags)
	out = binary.BigEndian.AppendUint32(out, signCount)
	return append(out, attested...)
}

func attestedCredentialData(credentialID []byte, pub *ecdsa.PublicKey) ([]byte, error) {
	key, err := coseKey(pub)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(aaguid)+2+len(credentialID)+len(key))
	out = append(out, aaguid...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(credentialID)))
	out = append(out, credentialID...)
	return append(out, key...), nil
}

func coseKey(pub *ecdsa.PublicKey) ([]byte, error) {
	ecdhKey, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to convert public key: %w", err)
	}
	// uncompressed point: 0x04 | x | y
	point := ecdhKey.Bytes()
	x := point[1 : 1+coordinateLength]
	y := point[1+coordinateLength:]

	key, err := ctap2.Marshal(map[int]any{
		1:  coseKeyTypeEC2,
		3:  int(webauthncose.AlgES256),
		-1: coseCurveP256,
		-2: x,
		-3: y,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	return key, nil
}

func encodeAttestation(authData []byte) ([]byte, error) {
	obj, err := ctap2.Marshal(attestationObject{
		Format:    "none",
		Statement: map[string]any{},
		AuthData:  authData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation object: %w", err)
	}
	return obj, nil
}

func clientDataJSON(ceremony protocol.CeremonyType, challenge []byte, origin string) ([]byte, error) {
	raw, err := json.Marshal(protocol.CollectedClientData{
		Type:      ceremony,
		Challenge: codec.Encode(challenge),
		Origin:    origin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode client data: %w", err)
	}
	return raw, nil
}
