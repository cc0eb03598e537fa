// Package interfaces defines the core types and contracts for the e-waste
// device lifecycle registry. It provides the contract between components
// without implementation details: the participant identity and role model,
// the device entity and its phase state machine vocabulary, the custody hop
// record, the registry operation surface, and the storage backend contract
// used for audit snapshot archival.
//
// All mutating registry operations take the caller identity as an explicit
// argument. The registry trusts that attribution completely; authenticating
// the calling party is the transport's concern.
package interfaces
