package codec

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

func TestEncode_RoundTrip(t *testing.T) {
	for size := 0; size <= 70; size++ {
		b := make([]byte, size)
		_, err := rand.Read(b)
		require.NoError(t, err)

		decoded, err := Decode(Encode(b))
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, b, decoded, "size %d", size)
	}
}

func TestEncode_URLSafeUnpadded(t *testing.T) {
	b := []byte{0xfb, 0xff, 0xfe, 0x01}

	s := Encode(b)

	assert.Equal(t, "-__-AQ", s)
	assert.NotContains(t, s, "=")
	assert.NotContains(t, s, "+")
	assert.NotContains(t, s, "/")
}

func TestDecode_AcceptsBothForms(t *testing.T) {
	b := []byte{0xfb, 0xff, 0xfe, 0x01, 0x02}

	standard := base64.StdEncoding.EncodeToString(b)
	urlSafe := base64.RawURLEncoding.EncodeToString(b)
	require.NotEqual(t, standard, urlSafe)

	fromStandard, err := Decode(standard)
	require.NoError(t, err)
	fromURL, err := Decode(urlSafe)
	require.NoError(t, err)
	fromPaddedURL, err := Decode(base64.URLEncoding.EncodeToString(b))
	require.NoError(t, err)

	assert.Equal(t, b, fromStandard)
	assert.Equal(t, fromStandard, fromURL)
	assert.Equal(t, fromURL, fromPaddedURL)
}

func TestDecode_ReencodesToCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "url safe", in: "-__-AQI", want: "-__-AQI"},
		{name: "standard padded", in: "+//+AQI=", want: "-__-AQI"},
		{name: "url safe padded", in: "aGk=", want: "aGk"},
		{name: "double padding", in: "QQ==", want: "QQ"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Encode(b))
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []string{
		"not base64!",
		"a",
		"ab=c",
		"YWJj\nZGVm",
		"aGl*",
		"QUJD=",
		"QQ=====",
		"QQ=",
		"QQ==A===",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			b, err := Decode(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMalformedEncoding)
			assert.Nil(t, b)
		})
	}
}

func TestDecodeAll(t *testing.T) {
	out, err := DecodeAll([]string{"AQI", "AwQ="})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2}, {3, 4}}, out)

	out, err = DecodeAll(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = DecodeAll([]string{"AQI", "%%"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedEncoding)
	assert.Contains(t, err.Error(), "element 1")
}
