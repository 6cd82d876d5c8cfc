package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string
	Count   uint32
	Tags    []string
	Payload []byte
	Note    *string
}

func TestRoundTrip(t *testing.T) {
	note := "hello"
	in := sample{Name: "widget", Count: 7, Tags: []string{"a", "b"}, Payload: []byte{1, 2, 3}, Note: &note}

	for _, code := range []Code{CBOR, JSON, Borsh} {
		t.Run(code.String(), func(t *testing.T) {
			encoded, err := Encode(code, in)
			require.NoError(t, err)

			peeked, err := PeekCode(encoded)
			require.NoError(t, err)
			assert.Equal(t, code, peeked)

			var out sample
			require.NoError(t, Decode(encoded, &out))
			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Count, out.Count)
			assert.Equal(t, in.Tags, out.Tags)
			assert.Equal(t, in.Payload, out.Payload)
			require.NotNil(t, out.Note)
			assert.Equal(t, *in.Note, *out.Note)
		})
	}
}

func TestRawPassthrough(t *testing.T) {
	in := []byte("raw bytes")
	encoded, err := Encode(Raw, in)
	require.NoError(t, err)

	var out []byte
	require.NoError(t, Decode(encoded, &out))
	assert.Equal(t, in, out)
}

func TestDecodeUnknownCode(t *testing.T) {
	var out sample
	err := Decode([]byte{0xff, 0xff, 0xff, 0x7f}, &out)
	assert.Error(t, err)
}

func TestBorshNilPointer(t *testing.T) {
	in := sample{Name: "no-note"}
	encoded, err := Encode(Borsh, in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Decode(encoded, &out))
	assert.Nil(t, out.Note)
}
