// Package registry implements the device lifecycle registry: the role ledger,
// the phase state machine, and the append-only custody history.
//
// Two implementations of interfaces.DeviceRegistry are provided. Ledger is the
// in-memory store of record used for tests, development, and single-node
// deployments; every mutation is applied atomically under a single lock, so
// accepted mutations form one total order and a losing concurrent transition
// fails its phase precondition instead of corrupting state.
// OnchainRegistryClient speaks to a deployed EwasteRegistry contract over an
// Ethereum RPC endpoint, delegating ordering and durability to the chain.
package registry
