package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Identity represents a registry participant, human or automated agent.
// It is a 20-byte address value; two identities are equal only when
// byte-identical.
type Identity [20]byte

// NewIdentityFromBytes creates an identity from a raw 20-byte slice.
func NewIdentityFromBytes(addr []byte) (Identity, error) {
	if len(addr) != 20 {
		return Identity{}, errors.New("invalid identity length: must be 20 bytes")
	}

	var res Identity
	copy(res[:], addr)
	return res, nil
}

// NewIdentityFromHex creates an identity from a 40-character hex string,
// with or without a 0x prefix.
func NewIdentityFromHex(addr string) (Identity, error) {
	clean := strings.TrimPrefix(addr, "0x")
	if len(clean) != 40 {
		return Identity{}, errors.New("invalid identity length: hex string must be 40 characters")
	}

	addrBytes, err := hex.DecodeString(clean)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewIdentityFromBytes(addrBytes)
}

// IdentityFromAddress converts an Ethereum address into an identity.
func IdentityFromAddress(addr common.Address) Identity {
	return Identity(addr)
}

// String returns the 0x-prefixed hex representation of the identity.
func (id Identity) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Bytes returns the raw 20-byte identity.
func (id Identity) Bytes() []byte {
	return id[:]
}

// Address returns the identity as an Ethereum address.
func (id Identity) Address() common.Address {
	return common.Address(id)
}

// Equal compares two identities for equality.
func (id Identity) Equal(other Identity) bool {
	return id == other
}

// IsZero reports whether the identity is the zero address.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalJSON encodes the identity as a hex string.
func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes the identity from a hex string.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := NewIdentityFromHex(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// DeviceUID is the caller-chosen, case-sensitive string identifying a device
// for its entire lifetime. The registry never generates UIDs.
type DeviceUID string

// NewDeviceUID validates a raw UID string.
func NewDeviceUID(uid string) (DeviceUID, error) {
	if uid == "" {
		return DeviceUID(""), fmt.Errorf("%w: empty device uid", ErrInvalidArgument)
	}
	return DeviceUID(uid), nil
}

// String returns the UID as a string.
func (uid DeviceUID) String() string {
	return string(uid)
}

// Validate checks that the UID is non-empty.
func (uid DeviceUID) Validate() error {
	_, err := NewDeviceUID(string(uid))
	return err
}
