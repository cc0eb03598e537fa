package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// ErrNoTransactOpts is returned when a transaction is attempted without first
// setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

// ErrCallerMismatch is returned when the attributed caller identity does not
// match the configured transactor. On chain the caller is whoever signs the
// transaction, so the two must agree or the attribution would be a lie.
var ErrCallerMismatch = errors.New("caller identity does not match transactor")

// OnchainRegistryClient implements interfaces.DeviceRegistry against an
// EwasteRegistry contract deployed on a blockchain. Ordering and atomicity of
// mutations are the chain's: each accepted transaction commits fully or
// reverts without effect.
type OnchainRegistryClient struct {
	contract *bind.BoundContract
	client   bind.ContractBackend
	address  common.Address
	auth     *bind.TransactOpts
}

// NewOnchainRegistryClient creates a client for the EwasteRegistry contract
// at the specified address. The client starts read-only; call SetTransactOpts
// to enable mutations.
func NewOnchainRegistryClient(client bind.ContractBackend, address common.Address) (*OnchainRegistryClient, error) {
	parsed, err := abi.JSON(strings.NewReader(ewasteRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("could not parse EwasteRegistry ABI: %w", err)
	}

	return &OnchainRegistryClient{
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		client:   client,
		address:  address,
	}, nil
}

// SetTransactOpts sets the signer used for state-changing calls. This must be
// called before any mutation; the signer address is the on-chain caller
// identity for every transaction this client sends.
func (c *OnchainRegistryClient) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

// Address returns the registry contract address.
func (c *OnchainRegistryClient) Address() common.Address {
	return c.address
}

// GrantRole submits a registerUser transaction granting the role to the
// identity. The contract enforces the Admin gate on msg.sender.
func (c *OnchainRegistryClient) GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) (*types.Transaction, error) {
	if err := role.Valid(); err != nil {
		return nil, err
	}
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "registerUser", identity.Address(), roleHash(role))
}

// HasRole queries role membership from the contract.
func (c *OnchainRegistryClient) HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error) {
	if err := role.Valid(); err != nil {
		return false, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: context.Background()}
	if err := c.contract.Call(opts, &out, "hasRole", roleHash(role), identity.Address()); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// RegisterDevice submits a registerDevice transaction.
func (c *OnchainRegistryClient) RegisterDevice(caller interfaces.Identity, uid interfaces.DeviceUID, category string, hazard interfaces.Hazard, condition interfaces.Condition) (*types.Transaction, error) {
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
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "registerDevice", uid.String(), category, uint8(hazard), uint8(condition))
}

// ConfirmCollection submits a confirmCollection transaction.
func (c *OnchainRegistryClient) ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "confirmCollection", uid.String(), site)
}

// RecordTransfer submits a recordTransfer transaction.
func (c *OnchainRegistryClient) RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "recordTransfer", uid.String(), fromSite, toSite, notes)
}

// DeliverToRecycler submits a deliverToRecycler transaction.
func (c *OnchainRegistryClient) DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "deliverToRecycler", uid.String(), recyclerSite)
}

// ProcessDevice submits a processDevice transaction.
func (c *OnchainRegistryClient) ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) (*types.Transaction, error) {
	if err := uid.Validate(); err != nil {
		return nil, err
	}
	if err := kind.Valid(); err != nil {
		return nil, err
	}
	if err := c.checkCaller(caller); err != nil {
		return nil, err
	}

	return c.contract.Transact(c.auth, "processDevice", uid.String(), uint8(kind))
}

// GetDevice reads the device record from the contract. The contract returns
// a zero struct with exists false for unknown UIDs, matching the ledger.
func (c *OnchainRegistryClient) GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: context.Background()}
	if err := c.contract.Call(opts, &out, "getDevice", uid.String()); err != nil {
		return interfaces.Device{}, err
	}

	raw := *abi.ConvertType(out[0], new(ewasteDevice)).(*ewasteDevice)
	return interfaces.Device{
		UID:         interfaces.DeviceUID(raw.Uid),
		Category:    raw.Category,
		Hazard:      interfaces.Hazard(raw.Hazard),
		Condition:   interfaces.Condition(raw.State),
		Owner:       interfaces.IdentityFromAddress(raw.Owner),
		Phase:       interfaces.Phase(raw.Phase),
		Disposition: interfaces.ProcessingKind(raw.Kind),
		Exists:      raw.Exists,
	}, nil
}

// GetHistory reads the full hop sequence for a UID from the contract.
func (c *OnchainRegistryClient) GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: context.Background()}
	if err := c.contract.Call(opts, &out, "getHistory", uid.String()); err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new([]ewasteHop)).(*[]ewasteHop)
	hops := make([]interfaces.Hop, 0, len(raw))
	for _, h := range raw {
		hops = append(hops, interfaces.Hop{
			Timestamp: h.Timestamp.Uint64(),
			From:      interfaces.IdentityFromAddress(h.From),
			To:        interfaces.IdentityFromAddress(h.To),
			FromSite:  h.FromSite,
			ToSite:    h.ToSite,
			Notes:     h.Notes,
		})
	}
	return hops, nil
}

// checkCaller verifies a transactor is configured and that the attributed
// caller matches its address.
func (c *OnchainRegistryClient) checkCaller(caller interfaces.Identity) error {
	if c.auth == nil {
		return ErrNoTransactOpts
	}
	if !caller.Equal(interfaces.IdentityFromAddress(c.auth.From)) {
		return fmt.Errorf("%w: caller %s, transactor %s", ErrCallerMismatch, caller, c.auth.From.Hex())
	}
	return nil
}

// RegistryFactory creates OnchainRegistryClient instances for different
// contract addresses sharing one RPC backend.
type RegistryFactory struct {
	client bind.ContractBackend
	auth   *bind.TransactOpts
}

// NewRegistryFactory creates a new factory for registry clients. The
// transact options may be nil for read-only factories.
func NewRegistryFactory(client bind.ContractBackend, auth *bind.TransactOpts) *RegistryFactory {
	return &RegistryFactory{client: client, auth: auth}
}

// RegistryFor returns a DeviceRegistry for the specified contract address.
func (f *RegistryFactory) RegistryFor(address common.Address) (interfaces.DeviceRegistry, error) {
	client, err := NewOnchainRegistryClient(f.client, address)
	if err != nil {
		return nil, err
	}
	if f.auth != nil {
		client.SetTransactOpts(f.auth)
	}
	return client, nil
}

var (
	_ interfaces.DeviceRegistry  = (*OnchainRegistryClient)(nil)
	_ interfaces.DeviceRegistry  = (*Ledger)(nil)
	_ interfaces.RegistryFactory = (*RegistryFactory)(nil)
)
