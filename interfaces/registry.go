package interfaces

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Registry error taxonomy. Every operation failure maps onto exactly one of
// these sentinels; callers unwrap with errors.Is. Transition operations check
// role, then existence, then phase, and the first failing check determines
// the reported error. No operation partially applies on error.
var (
	// ErrUnauthorized indicates the caller lacks the role required for the
	// requested operation.
	ErrUnauthorized = errors.New("caller lacks required role")

	// ErrNotFound indicates the referenced device UID does not exist.
	ErrNotFound = errors.New("device not found")

	// ErrAlreadyExists indicates a registration attempt for a UID that is
	// already taken. Registered devices are never overwritten.
	ErrAlreadyExists = errors.New("device already registered")

	// ErrInvalidPhase indicates the device exists but is not in a phase from
	// which the requested transition is legal.
	ErrInvalidPhase = errors.New("transition not allowed from current phase")

	// ErrInvalidArgument indicates malformed input, such as an empty UID or
	// an out-of-range enumeration value.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Device is the central registry entity, keyed by its caller-chosen UID.
// Hazard and Condition are write-once; Owner tracks the identity accountable
// for the device and changes with each custody transition; Phase only ever
// advances forward.
type Device struct {
	UID       DeviceUID `json:"uid"`
	Category  string    `json:"category"`
	Hazard    Hazard    `json:"hazard"`
	Condition Condition `json:"condition"`
	Owner     Identity  `json:"owner"`
	Phase     Phase     `json:"phase"`

	// Disposition is the processing kind recorded by the terminal
	// transition. Meaningful only once Phase == PhaseProcessed.
	Disposition ProcessingKind `json:"disposition"`

	// Exists is false for UIDs that were never registered, letting readers
	// distinguish "not found" without error-based control flow.
	Exists bool `json:"exists"`
}

// Hop is one immutable record of a custody or location change. Hops are
// appended on collection, transfer, and delivery, never on registration or
// processing, and are never edited or reordered afterwards.
type Hop struct {
	Timestamp uint64   `json:"timestamp"`
	From      Identity `json:"from"`
	To        Identity `json:"to"`
	FromSite  string   `json:"from_site"`
	ToSite    string   `json:"to_site"`
	Notes     string   `json:"notes"`
}

// DeviceRegistry is the complete operation surface of the device lifecycle
// registry: role grant/check, the five phase transitions, and the two read
// queries. Mutations carry the caller identity explicitly and return the
// transaction that applied them; the in-memory ledger returns an empty
// transaction since there is no chain to commit to.
type DeviceRegistry interface {
	// GrantRole adds a role to an identity's role set. Admin only.
	// Granting an already-held role is a no-op success.
	GrantRole(caller Identity, identity Identity, role Role) (*types.Transaction, error)

	// HasRole reports whether the identity holds the role. Pure read.
	HasRole(identity Identity, role Role) (bool, error)

	// RegisterDevice creates a device in phase Registered. User role.
	RegisterDevice(caller Identity, uid DeviceUID, category string, hazard Hazard, condition Condition) (*types.Transaction, error)

	// ConfirmCollection moves a Registered device to Collected and appends
	// a hop to the collection site. GreenPoint role.
	ConfirmCollection(caller Identity, uid DeviceUID, site string) (*types.Transaction, error)

	// RecordTransfer records one transport leg, moving the device to (or
	// keeping it in) InTransit and appending a hop. Carrier role.
	RecordTransfer(caller Identity, uid DeviceUID, fromSite, toSite, notes string) (*types.Transaction, error)

	// DeliverToRecycler moves a Collected or InTransit device to
	// DeliveredToRecycler and appends a hop. Carrier role.
	DeliverToRecycler(caller Identity, uid DeviceUID, recyclerSite string) (*types.Transaction, error)

	// ProcessDevice records the terminal disposition of a delivered device.
	// Recycler role. Appends no hop.
	ProcessDevice(caller Identity, uid DeviceUID, kind ProcessingKind) (*types.Transaction, error)

	// GetDevice returns the device for a UID. Unknown UIDs yield a zero
	// device with Exists set to false rather than an error.
	GetDevice(uid DeviceUID) (Device, error)

	// GetHistory returns all hops for a UID in append order. Unknown UIDs
	// and devices with no transfer history yield an empty sequence.
	GetHistory(uid DeviceUID) ([]Hop, error)
}

// RegistryFactory creates DeviceRegistry instances for different registry
// contract addresses.
type RegistryFactory interface {
	RegistryFor(address common.Address) (DeviceRegistry, error)
}
