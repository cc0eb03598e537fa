// Package clients provides HTTP clients for the registry service, used
// by the admin and seeder commands and by integration tests.
package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/greenloop/ewaste-registry-backend/api"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// RegistryClient implements api.RegistryProvider against a running
// registry server. The caller identity of each mutation travels in the
// X-Ewaste-Identity header.
type RegistryClient struct {
	// ServerAddr is the base URL of the registry server.
	ServerAddr string

	// Client is the HTTP client to use. Defaults to http.DefaultClient.
	Client *http.Client
}

func (c *RegistryClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// do performs a request and maps error responses back onto the registry
// error taxonomy, so callers can use errors.Is the same way they would
// against a local registry.
func (c *RegistryClient) do(method, path string, caller *interfaces.Identity, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("could not encode request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(api.IdentityHeader, caller.String())
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeErrorResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not parse response from %s: %w", path, err)
		}
	}
	return nil
}

func decodeErrorResponse(resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	sentinel := sentinelForKind(errResp.Kind)
	if sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, errResp.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
}

func sentinelForKind(kind string) error {
	switch kind {
	case "unauthorized":
		return interfaces.ErrUnauthorized
	case "not_found":
		return interfaces.ErrNotFound
	case "already_exists":
		return interfaces.ErrAlreadyExists
	case "invalid_phase":
		return interfaces.ErrInvalidPhase
	case "invalid_argument":
		return interfaces.ErrInvalidArgument
	default:
		return nil
	}
}

// GrantRole adds a role to an identity's role set.
func (c *RegistryClient) GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) error {
	return c.do(http.MethodPost, "/api/admin/roles", &caller, api.GrantRoleRequest{Identity: identity, Role: role}, nil)
}

// HasRole reports whether the identity holds the role.
func (c *RegistryClient) HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error) {
	var resp api.HasRoleResponse
	path := fmt.Sprintf("/api/public/roles/%s/%s", role.String(), identity.String())
	if err := c.do(http.MethodGet, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.HasRole, nil
}

// RegisterDevice registers a new device under the caller's custody.
func (c *RegistryClient) RegisterDevice(caller interfaces.Identity, req api.RegisterDeviceRequest) error {
	return c.do(http.MethodPost, "/api/devices", &caller, req, nil)
}

// ConfirmCollection confirms collection of a device at a green point.
func (c *RegistryClient) ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) error {
	path := fmt.Sprintf("/api/devices/%s/collection", uid)
	return c.do(http.MethodPost, path, &caller, api.CollectionRequest{Site: site}, nil)
}

// RecordTransfer records one transport leg.
func (c *RegistryClient) RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) error {
	path := fmt.Sprintf("/api/devices/%s/transfers", uid)
	return c.do(http.MethodPost, path, &caller, api.TransferRequest{FromSite: fromSite, ToSite: toSite, Notes: notes}, nil)
}

// DeliverToRecycler hands a device over to a recycler site.
func (c *RegistryClient) DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) error {
	path := fmt.Sprintf("/api/devices/%s/delivery", uid)
	return c.do(http.MethodPost, path, &caller, api.DeliveryRequest{RecyclerSite: recyclerSite}, nil)
}

// ProcessDevice records the terminal disposition of a device.
func (c *RegistryClient) ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) error {
	path := fmt.Sprintf("/api/devices/%s/processing", uid)
	return c.do(http.MethodPost, path, &caller, api.ProcessingRequest{Kind: kind}, nil)
}

// GetDevice fetches the current device record.
func (c *RegistryClient) GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error) {
	var device interfaces.Device
	path := fmt.Sprintf("/api/public/devices/%s", uid)
	if err := c.do(http.MethodGet, path, nil, nil, &device); err != nil {
		return interfaces.Device{}, err
	}
	return device, nil
}

// GetHistory fetches a device's hop history in append order.
func (c *RegistryClient) GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error) {
	var resp api.HistoryResponse
	path := fmt.Sprintf("/api/public/devices/%s/history", uid)
	if err := c.do(http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hops, nil
}

// ArchiveDevice asks the server to snapshot and archive a device record.
func (c *RegistryClient) ArchiveDevice(caller interfaces.Identity, uid interfaces.DeviceUID) (*api.ArchiveResponse, error) {
	var resp api.ArchiveResponse
	path := fmt.Sprintf("/api/devices/%s/archive", uid)
	if err := c.do(http.MethodPost, path, &caller, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var _ api.RegistryProvider = (*RegistryClient)(nil)

// MockRegistryProvider implements a mock api.RegistryProvider for testing.
type MockRegistryProvider struct {
	mock.Mock
}

func (m *MockRegistryProvider) GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) error {
	args := m.Called(caller, identity, role)
	return args.Error(0)
}

func (m *MockRegistryProvider) HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error) {
	args := m.Called(identity, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryProvider) RegisterDevice(caller interfaces.Identity, req api.RegisterDeviceRequest) error {
	args := m.Called(caller, req)
	return args.Error(0)
}

func (m *MockRegistryProvider) ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) error {
	args := m.Called(caller, uid, site)
	return args.Error(0)
}

func (m *MockRegistryProvider) RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) error {
	args := m.Called(caller, uid, fromSite, toSite, notes)
	return args.Error(0)
}

func (m *MockRegistryProvider) DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) error {
	args := m.Called(caller, uid, recyclerSite)
	return args.Error(0)
}

func (m *MockRegistryProvider) ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) error {
	args := m.Called(caller, uid, kind)
	return args.Error(0)
}

func (m *MockRegistryProvider) GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error) {
	args := m.Called(uid)
	return args.Get(0).(interfaces.Device), args.Error(1)
}

func (m *MockRegistryProvider) GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.Hop), args.Error(1)
}

func (m *MockRegistryProvider) ArchiveDevice(caller interfaces.Identity, uid interfaces.DeviceUID) (*api.ArchiveResponse, error) {
	args := m.Called(caller, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ArchiveResponse), args.Error(1)
}
