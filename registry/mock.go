package registry

import (
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// MockRegistry mocks the DeviceRegistry interface
type MockRegistry struct {
	mock.Mock
}

// GrantRole mocks the GrantRole method
func (m *MockRegistry) GrantRole(caller interfaces.Identity, identity interfaces.Identity, role interfaces.Role) (*types.Transaction, error) {
	args := m.Called(caller, identity, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// HasRole mocks the HasRole method
func (m *MockRegistry) HasRole(identity interfaces.Identity, role interfaces.Role) (bool, error) {
	args := m.Called(identity, role)
	return args.Bool(0), args.Error(1)
}

// RegisterDevice mocks the RegisterDevice method
func (m *MockRegistry) RegisterDevice(caller interfaces.Identity, uid interfaces.DeviceUID, category string, hazard interfaces.Hazard, condition interfaces.Condition) (*types.Transaction, error) {
	args := m.Called(caller, uid, category, hazard, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// ConfirmCollection mocks the ConfirmCollection method
func (m *MockRegistry) ConfirmCollection(caller interfaces.Identity, uid interfaces.DeviceUID, site string) (*types.Transaction, error) {
	args := m.Called(caller, uid, site)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// RecordTransfer mocks the RecordTransfer method
func (m *MockRegistry) RecordTransfer(caller interfaces.Identity, uid interfaces.DeviceUID, fromSite, toSite, notes string) (*types.Transaction, error) {
	args := m.Called(caller, uid, fromSite, toSite, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// DeliverToRecycler mocks the DeliverToRecycler method
func (m *MockRegistry) DeliverToRecycler(caller interfaces.Identity, uid interfaces.DeviceUID, recyclerSite string) (*types.Transaction, error) {
	args := m.Called(caller, uid, recyclerSite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// ProcessDevice mocks the ProcessDevice method
func (m *MockRegistry) ProcessDevice(caller interfaces.Identity, uid interfaces.DeviceUID, kind interfaces.ProcessingKind) (*types.Transaction, error) {
	args := m.Called(caller, uid, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// GetDevice mocks the GetDevice method
func (m *MockRegistry) GetDevice(uid interfaces.DeviceUID) (interfaces.Device, error) {
	args := m.Called(uid)
	return args.Get(0).(interfaces.Device), args.Error(1)
}

// GetHistory mocks the GetHistory method
func (m *MockRegistry) GetHistory(uid interfaces.DeviceUID) ([]interfaces.Hop, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.Hop), args.Error(1)
}
