package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// Clock supplies hop timestamps as unix seconds. Injectable so tests can pin
// the timeline; the ledger guarantees non-decreasing timestamps in append
// order regardless of what the clock returns.
type Clock func() uint64

// Ledger is the in-memory store of record for the device lifecycle registry.
// It owns the identity-to-role set, the UID-to-device mapping, and each
// device's custody history. All mutations are serialized under one mutex:
// each call either fully applies (role, phase, owner, and history together)
// or has no effect.
type Ledger struct {
	mutex   sync.RWMutex
	roles   map[interfaces.Role]map[interfaces.Identity]bool
	devices map[interfaces.DeviceUID]interfaces.Device
	history map[interfaces.DeviceUID][]interfaces.Hop

	clock  Clock
	lastTS uint64
}

// NewLedger creates an empty ledger and grants the Admin role to the seed
// admin identity, mirroring the registry contract constructor granting
// ADMIN_ROLE to its deployer. A nil clock defaults to the wall clock.
func NewLedger(admin interfaces.Identity, clock Clock) *Ledger {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}

	l := &Ledger{
		roles:   make(map[interfaces.Role]map[interfaces.Identity]bool),
		devices: make(map[interfaces.DeviceUID]interfaces.Device),
		history: make(map[interfaces.DeviceUID][]interfaces.Hop),
		clock:   clock,
	}
	l.grant(admin, interfaces.RoleAdmin)
	return l
}

// GrantRole adds a role to an identity's role set. Only an Admin caller may
// grant, including when granting Admin itself to another identity. Granting
// an already-held role succeeds without effect.
func (l *Ledger) GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) (*types.Transaction, error) {
	if err := role.Valid(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.holds(caller, interfaces.RoleAdmin) {
		return nil, fmt.Errorf("%w: %s requires Admin to grant roles", interfaces.ErrUnauthorized, caller)
	}

	l.grant(identity, role)
	return &types.Transaction{}, nil
}

// HasRole reports whether the identity holds the role. Never fails; an
// out-of-range role simply has no members.
func (l *Ledger) HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.holds(identity, role), nil
}

// RegisterDevice creates a device in phase Registered with write-once hazard
// and condition. The UID is caller-chosen; reuse is rejected, never
// overwritten. No hop is appended since the device has no prior custodian.
func (l *Ledger) RegisterDevice(caller interfaces.Identity, uid interfaces.DeviceUID, category string, hazard interfaces.Hazard, condition interfaces.Condition) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, fmt.Errorf("%w: empty category", interfaces.ErrInvalidArgument)
	}
	if err := hazard.Valid(); err != nil {
		return nil, err
	}
	if err := condition.Valid(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.holds(caller, interfaces.RoleUser) {
		return nil, fmt.Errorf("%w: registerDevice requires User", interfaces.ErrUnauthorized)
	}
	if _, taken := l.devices[uid]; taken {
		return nil, fmt.Errorf("%w: uid %q", interfaces.ErrAlreadyExists, uid)
	}

	l.devices[uid] = interfaces.Device{
		UID:       uid,
		Category:  category,
		Hazard:    hazard,
		Condition: condition,
		Owner:     caller,
		Phase:     interfaces.PhaseRegistered,
		Exists:    true,
	}
	return &types.Transaction{}, nil
}

// ConfirmCollection moves a Registered device to Collected, transfers
// ownership to the collecting green point, and appends the first hop.
func (l *Ledger) ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	device, err := l.checkTransition(caller, uid, interfaces.RoleGreenPoint, "confirmCollection", interfaces.PhaseRegistered)
	if err != nil {
		return nil, err
	}

	l.appendHop(uid, interfaces.Hop{
		Timestamp: l.tick(),
		From:      device.Owner,
		To:        caller,
		ToSite:    site,
	})
	device.Owner = caller
	device.Phase = interfaces.PhaseCollected
	l.devices[uid] = device

	return &types.Transaction{}, nil
}

// RecordTransfer records one transport leg. A device may be transferred any
// number of times while remaining InTransit, supporting multi-leg routes.
func (l *Ledger) RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	device, err := l.checkTransition(caller, uid, interfaces.RoleCarrier, "recordTransfer", interfaces.PhaseCollected, interfaces.PhaseInTransit)
	if err != nil {
		return nil, err
	}

	l.appendHop(uid, interfaces.Hop{
		Timestamp: l.tick(),
		From:      device.Owner,
		To:        caller,
		FromSite:  fromSite,
		ToSite:    toSite,
		Notes:     notes,
	})
	device.Owner = caller
	device.Phase = interfaces.PhaseInTransit
	l.devices[uid] = device

	return &types.Transaction{}, nil
}

// DeliverToRecycler hands a Collected or InTransit device to a recycler site.
// Delivery may follow zero or more transfer legs.
func (l *Ledger) DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	device, err := l.checkTransition(caller, uid, interfaces.RoleCarrier, "deliverToRecycler", interfaces.PhaseCollected, interfaces.PhaseInTransit)
	if err != nil {
		return nil, err
	}

	l.appendHop(uid, interfaces.Hop{
		Timestamp: l.tick(),
		From:      device.Owner,
		To:        caller,
		ToSite:    recyclerSite,
	})
	device.Owner = caller
	device.Phase = interfaces.PhaseDeliveredToRecycler
	l.devices[uid] = device

	return &types.Transaction{}, nil
}

// ProcessDevice records the terminal disposition of a delivered device. The
// transition is terminal and represents no location change, so no hop is
// appended; the chosen kind is exposed by GetDevice alongside the phase.
func (l *Ledger) ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if err := kind.Valid(); err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	device, err := l.checkTransition(caller, uid, interfaces.RoleRecycler, "processDevice", interfaces.PhaseDeliveredToRecycler)
	if err != nil {
		return nil, err
	}

	device.Owner = caller
	device.Phase = interfaces.PhaseProcessed
	device.Disposition = kind
	l.devices[uid] = device

	return &types.Transaction{}, nil
}

// GetDevice returns the device for a UID. A UID that was never registered
// yields a zero device with Exists false rather than an error, so callers can
// distinguish "not found" without exception-based control flow.
func (l *Ledger) GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	device, ok := l.devices[uid]
	if !ok {
		return interfaces.Device{UID: uid}, nil
	}
	return device, nil
}

// GetHistory returns all hops for a UID in the exact order they were
// appended. Unknown UIDs and untraveled devices yield an empty sequence.
func (l *Ledger) GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	hops := l.history[uid]

	// Return a copy to prevent modification of internal state.
	out := make([]interfaces.Hop, len(hops))
	copy(out, hops)
	return out, nil
}

// checkTransition validates role, existence, and phase, in that order, and
// returns the device unmodified. The first failing check determines the
// reported error; nothing is mutated until all checks pass.
func (l *Ledger) checkTransition(caller interfaces.Identity, uid interfaces.DeviceUID, required interfaces.Role, op string, allowed ...interfaces.Phase) (interfaces.Device, error) {
	if !l.holds(caller, required) {
		return interfaces.Device{}, fmt.Errorf("%w: %s requires %s", interfaces.ErrUnauthorized, op, required)
	}

	device, ok := l.devices[uid]
	if !ok {
		return interfaces.Device{}, fmt.Errorf("%w: uid %q", interfaces.ErrNotFound, uid)
	}

	for _, phase := range allowed {
		if device.Phase == phase {
			return device, nil
		}
	}
	return interfaces.Device{}, fmt.Errorf("%w: %s not allowed from %s", interfaces.ErrInvalidPhase, op, device.Phase)
}

func (l *Ledger) holds(identity interfaces.Identity, role interfaces.Role) bool {
	return l.roles[role][identity]
}

func (l *Ledger) grant(identity interfaces.Identity, role interfaces.Role) {
	members, ok := l.roles[role]
	if !ok {
		members = make(map[interfaces.Identity]bool)
		l.roles[role] = members
	}
	members[identity] = true
}

func (l *Ledger) appendHop(uid interfaces.DeviceUID, hop interfaces.Hop) {
	l.history[uid] = append(l.history[uid], hop)
}

// tick reads the clock, clamped so timestamps never decrease in append order
// even if the underlying clock steps backwards.
func (l *Ledger) tick() uint64 {
	now := l.clock()
	if now < l.lastTS {
		now = l.lastTS
	}
	l.lastTS = now
	return now
}
