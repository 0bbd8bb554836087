// Tests for validator public key parsing, formatting and copying.
package validatorpk

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// TestFromString verifies that a hexadecimal string (with or without 0x
// prefix) parses into the expected PubKey.
func TestFromString(t *testing.T) {
	require := require.New(t)

	exp := PubKey{
		Type: Types.Secp256k1,
		Raw:  common.FromHex("45b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1"),
	}

	// Without "0x" prefix.
	{
		got, err := FromString("c0045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
		require.NoError(err)
		require.Equal(exp, got)
	}

	// With "0x" prefix.
	{
		got, err := FromString("0xc0045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
		require.NoError(err)
		require.Equal(exp, got)
	}

	// Empty string is rejected.
	{
		_, err := FromString("")
		require.Error(err)
	}

	// "0x" only (empty bytes) is rejected.
	{
		_, err := FromString("0x")
		require.Error(err)
	}

	// Invalid hex characters are rejected.
	{
		_, err := FromString("-")
		require.Error(err)
	}
}

// TestString verifies the 0x-prefixed hex form, type byte first.
func TestString(t *testing.T) {
	require := require.New(t)
	pk := PubKey{
		Type: Types.Secp256k1,
		Raw:  common.FromHex("45b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1"),
	}
	require.Equal("0xc0045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1", pk.String())
}

func TestEmpty(t *testing.T) {
	require := require.New(t)

	require.True(PubKey{}.Empty())
	require.False(PubKey{Type: Types.Secp256k1, Raw: []byte{0x01}}.Empty())
}

func TestBytes(t *testing.T) {
	require := require.New(t)

	pk := PubKey{
		Type: 0x01,
		Raw:  []byte{0x02, 0x03},
	}
	require.Equal([]byte{0x01, 0x02, 0x03}, pk.Bytes())
}

// TestCopy verifies that Copy produces a deep copy of the raw key bytes.
func TestCopy(t *testing.T) {
	require := require.New(t)

	original := PubKey{
		Type: 0x01,
		Raw:  []byte{0xAA, 0xBB},
	}

	cp := original.Copy()
	require.Equal(original, cp)

	// Mutating the copy must not affect the original.
	cp.Raw[0] = 0xFF
	require.Equal(uint8(0xAA), original.Raw[0])
	require.NotEqual(original, cp)
}

func TestFromBytes(t *testing.T) {
	require := require.New(t)

	pk, err := FromBytes([]byte{0xc0, 0x01, 0x02})
	require.NoError(err)
	require.Equal(uint8(0xc0), pk.Type)
	require.Equal([]byte{0x01, 0x02}, pk.Raw)

	_, err = FromBytes([]byte{})
	require.Error(err)
}

// TestMarshalUnmarshal verifies JSON encoding via MarshalText/UnmarshalText.
func TestMarshalUnmarshal(t *testing.T) {
	require := require.New(t)

	original := PubKey{
		Type: Types.Secp256k1,
		Raw:  []byte{0xAA, 0xBB, 0xCC},
	}

	data, err := json.Marshal(&original)
	require.NoError(err)
	require.Equal(`"`+original.String()+`"`, string(data))

	var decoded PubKey
	require.NoError(json.Unmarshal(data, &decoded))
	require.Equal(original, decoded)
}
