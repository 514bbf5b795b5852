// Package codec converts between the transport strings of the relying party
// wire protocol and the raw byte buffers used by the platform authenticator.
//
// Encode always emits the URL-safe alphabet without padding. Decode also
// accepts the standard alphabet and trailing padding, since both forms appear
// on the wire.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

var standardToURL = strings.NewReplacer("+", "-", "/", "_")

// Encode returns the unpadded URL-safe form of b.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses s in either alphabet, padded or not.
func Decode(s string) ([]byte, error) {
	normalized := standardToURL.Replace(s)
	if padded := strings.TrimRight(normalized, "="); padded != normalized {
		if pad := len(normalized) - len(padded); pad > 2 || len(normalized)%4 != 0 {
			return nil, fmt.Errorf("%w: bad padding in %q", model.ErrMalformedEncoding, s)
		}
		normalized = padded
	}
	if strings.ContainsAny(normalized, "=\r\n") {
		return nil, fmt.Errorf("%w: unexpected character in %q", model.ErrMalformedEncoding, s)
	}

	b, err := base64.RawURLEncoding.Strict().DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedEncoding, err)
	}
	return b, nil
}

// DecodeAll decodes every element of ss, failing on the first malformed one.
func DecodeAll(ss []string) ([][]byte, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([][]byte, 0, len(ss))
	for i, s := range ss {
		b, err := Decode(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
