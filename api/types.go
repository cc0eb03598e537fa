// Package api defines the HTTP contract of the registry service: header
// constants, request and response bodies, the mapping from registry errors to
// status codes, and the provider interfaces implemented by the HTTP client.
package api

import (
	"errors"
	"net/http"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// IdentityHeader carries the attributed caller identity on every mutating
// request as a 40-char hex address (0x prefix optional). Authenticating that
// attribution is the deployment's concern (a gateway, mTLS, a signature
// scheme); the registry trusts the header completely.
const IdentityHeader = "X-Ewaste-Identity"

// GrantRoleRequest asks for a role to be added to an identity's role set.
type GrantRoleRequest struct {
	Identity interfaces.Identity `json:"identity"`
	Role     interfaces.Role     `json:"role"`
}

// RegisterDeviceRequest registers a new device under a caller-chosen UID.
type RegisterDeviceRequest struct {
	UID       string               `json:"uid"`
	Category  string               `json:"category"`
	Hazard    interfaces.Hazard    `json:"hazard"`
	Condition interfaces.Condition `json:"condition"`
}

// CollectionRequest confirms collection of a device at a green point site.
type CollectionRequest struct {
	Site string `json:"site"`
}

// TransferRequest records one transport leg between two sites.
type TransferRequest struct {
	FromSite string `json:"from_site"`
	ToSite   string `json:"to_site"`
	Notes    string `json:"notes"`
}

// DeliveryRequest hands a device over to a recycler site.
type DeliveryRequest struct {
	RecyclerSite string `json:"recycler_site"`
}

// ProcessingRequest records the terminal disposition of a device.
type ProcessingRequest struct {
	Kind interfaces.ProcessingKind `json:"kind"`
}

// StatusResponse acknowledges an accepted mutation.
type StatusResponse struct {
	Status string `json:"status"`
}

// HasRoleResponse answers a role membership query.
type HasRoleResponse struct {
	Identity interfaces.Identity `json:"identity"`
	Role     interfaces.Role     `json:"role"`
	HasRole  bool                `json:"has_role"`
}

// HistoryResponse lists a device's hops in append order.
type HistoryResponse struct {
	UID  string           `json:"uid"`
	Hops []interfaces.Hop `json:"hops"`
}

// ArchiveResponse reports where an audit snapshot was stored.
type ArchiveResponse struct {
	UID       string   `json:"uid"`
	ContentID string   `json:"content_id"`
	Backends  []string `json:"backends"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// ErrorKind names the registry error category for an error, or "internal"
// for anything outside the closed taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, interfaces.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, interfaces.ErrNotFound):
		return "not_found"
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, interfaces.ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, interfaces.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}

// StatusFromError maps a registry error onto its HTTP status code.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidPhase):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RegistryProvider is the registry operation surface as seen by HTTP
// clients. Implemented by clients.RegistryClient against a running server.
type RegistryProvider interface {
	GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) error
	HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error)
	RegisterDevice(caller interfaces.Identity, req RegisterDeviceRequest) error
	ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) error
	RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) error
	DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) error
	ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) error
	GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error)
	GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error)
	ArchiveDevice(caller interfaces.Identity, uid interfaces.DeviceUID) (*ArchiveResponse, error)
}
