package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityHexEncoding(t *testing.T) {
	id, err := NewIdentityFromHex("0x00112233445566778899aabbccddeeff00112233")
	require.NoError(t, err)

	require.Equal(t, "0x00112233445566778899aabbccddeeff00112233", id.String())

	encoded, err := json.Marshal(id)
	require.NoError(t, err)
	require.Equal(t, `"0x00112233445566778899aabbccddeeff00112233"`, string(encoded))
}

func TestIdentityHexRoundTrip(t *testing.T) {
	for _, input := range []string{
		"0x00112233445566778899aabbccddeeff00112233",
		"00112233445566778899aabbccddeeff00112233",
	} {
		parsed, err := NewIdentityFromHex(input)
		require.NoError(t, err)

		reparsed, err := NewIdentityFromHex(parsed.String())
		require.NoError(t, err)
		require.Equal(t, parsed, reparsed)

		encoded, err := json.Marshal(parsed)
		require.NoError(t, err)

		var decoded Identity
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		require.Equal(t, parsed, decoded)
	}

	_, err := NewIdentityFromHex("0x1234")
	require.Error(t, err)

	var id Identity
	require.Error(t, json.Unmarshal([]byte(`"not-hex"`), &id))
}
