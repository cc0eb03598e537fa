package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// ewasteRegistryABI is the application binary interface of the EwasteRegistry
// contract, limited to the operation surface the backend uses.
const ewasteRegistryABI = `[
	{"type":"function","name":"registerUser","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"},{"name":"role","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"registerDevice","stateMutability":"nonpayable","inputs":[{"name":"uid","type":"string"},{"name":"category","type":"string"},{"name":"hazard","type":"uint8"},{"name":"state","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"confirmCollection","stateMutability":"nonpayable","inputs":[{"name":"uid","type":"string"},{"name":"site","type":"string"}],"outputs":[]},
	{"type":"function","name":"recordTransfer","stateMutability":"nonpayable","inputs":[{"name":"uid","type":"string"},{"name":"fromSite","type":"string"},{"name":"toSite","type":"string"},{"name":"notes","type":"string"}],"outputs":[]},
	{"type":"function","name":"deliverToRecycler","stateMutability":"nonpayable","inputs":[{"name":"uid","type":"string"},{"name":"recyclerSite","type":"string"}],"outputs":[]},
	{"type":"function","name":"processDevice","stateMutability":"nonpayable","inputs":[{"name":"uid","type":"string"},{"name":"kind","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"getDevice","stateMutability":"view","inputs":[{"name":"uid","type":"string"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"uid","type":"string"},{"name":"category","type":"string"},{"name":"hazard","type":"uint8"},{"name":"state","type":"uint8"},{"name":"owner","type":"address"},{"name":"phase","type":"uint8"},{"name":"kind","type":"uint8"},{"name":"exists","type":"bool"}]}]},
	{"type":"function","name":"getHistory","stateMutability":"view","inputs":[{"name":"uid","type":"string"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"timestamp","type":"uint256"},{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"fromSite","type":"string"},{"name":"toSite","type":"string"},{"name":"notes","type":"string"}]}]}
]`

// ewasteDevice mirrors the contract's Ewaste struct for ABI unpacking.
type ewasteDevice struct {
	Uid      string
	Category string
	Hazard   uint8
	State    uint8
	Owner    common.Address
	Phase    uint8
	Kind     uint8
	Exists   bool
}

// ewasteHop mirrors the contract's Hop struct for ABI unpacking.
type ewasteHop struct {
	Timestamp *big.Int
	From      common.Address
	To        common.Address
	FromSite  string
	ToSite    string
	Notes     string
}

// roleHash maps a Role onto the contract's bytes32 role constant, computed
// the same way the contract declares them (keccak256 of the constant name).
func roleHash(role interfaces.Role) common.Hash {
	var name string
	switch role {
	case interfaces.RoleAdmin:
		name = "ADMIN_ROLE"
	case interfaces.RoleUser:
		name = "USER_ROLE"
	case interfaces.RoleGreenPoint:
		name = "GREEN_POINT_ROLE"
	case interfaces.RoleCarrier:
		name = "CARRIER_ROLE"
	case interfaces.RoleRecycler:
		name = "RECYCLER_ROLE"
	case interfaces.RoleInspector:
		name = "INSPECTOR_ROLE"
	}
	return crypto.Keccak256Hash([]byte(name))
}
