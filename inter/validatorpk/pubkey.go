// Package validatorpk defines the typed public keys carried by genesis
// authority entries. A PubKey pairs the raw key bytes with a scheme tag so
// the consensus layer can support additional curves without changing the
// genesis format.
package validatorpk

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// PubKey is a validator public key together with its scheme identifier.
type PubKey struct {
	// Type identifies the signature scheme of Raw.
	Type uint8
	// Raw contains the key bytes in the scheme's uncompressed form.
	Raw []byte
}

// Types enumerates the supported key schemes.
var Types = struct {
	Secp256k1 uint8
}{
	Secp256k1: 0xc0,
}

// Empty reports whether the key is uninitialized.
func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0 && pk.Type == 0
}

// String returns the 0x-prefixed hex form, type byte included.
func (pk PubKey) String() string {
	return "0x" + common.Bytes2Hex(pk.Bytes())
}

// Bytes returns the flat form: one type byte followed by the raw key.
func (pk PubKey) Bytes() []byte {
	return append([]byte{pk.Type}, pk.Raw...)
}

// Copy returns a deep copy; Raw is a slice and must not be shared.
func (pk PubKey) Copy() PubKey {
	return PubKey{
		Type: pk.Type,
		Raw:  common.CopyBytes(pk.Raw),
	}
}

// FromString parses the 0x-prefixed hex form produced by String.
func FromString(str string) (PubKey, error) {
	return FromBytes(common.FromHex(str))
}

// FromBytes parses the flat form produced by Bytes.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, errors.New("empty pubkey")
	}
	return PubKey{b[0], b[1:]}, nil
}

// MarshalText implements encoding.TextMarshaler so keys serialize as hex
// strings in JSON documents.
func (pk *PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
