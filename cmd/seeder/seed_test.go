package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/greenloop/ewaste-registry-backend/api/clients"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testIdentities() seedIdentities {
	return seedIdentities{
		Admin:      interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b01")),
		User:       interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b02")),
		GreenPoint: interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b03")),
		Carrier:    interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b04")),
		Recycler:   interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b05")),
		Inspector:  interfaces.IdentityFromAddress(common.HexToAddress("0x0000000000000000000000000000000000000b06")),
	}
}

func TestSeedDrivesRolesDevicesAndRoutes(t *testing.T) {
	ids := testIdentities()

	provider := new(clients.MockRegistryProvider)
	provider.On("GrantRole", ids.Admin, ids.User, interfaces.RoleUser).Return(nil)
	provider.On("GrantRole", ids.Admin, ids.GreenPoint, interfaces.RoleGreenPoint).Return(nil)
	provider.On("GrantRole", ids.Admin, ids.Carrier, interfaces.RoleCarrier).Return(nil)
	provider.On("GrantRole", ids.Admin, ids.Recycler, interfaces.RoleRecycler).Return(nil)
	provider.On("GrantRole", ids.Admin, ids.Inspector, interfaces.RoleInspector).Return(nil)

	provider.On("RegisterDevice", ids.User, mock.AnythingOfType("api.RegisterDeviceRequest")).Return(nil)

	provider.On("ConfirmCollection", ids.GreenPoint, interfaces.DeviceUID("DEV-1000"), "GreenPoint-A").Return(nil)
	provider.On("RecordTransfer", ids.Carrier, interfaces.DeviceUID("DEV-1000"), "GreenPoint-A", "Hub-1", "Leg 1").Return(nil)
	provider.On("RecordTransfer", ids.Carrier, interfaces.DeviceUID("DEV-1000"), "Hub-1", "Recycler-X", "Leg 2").Return(nil)
	provider.On("DeliverToRecycler", ids.Carrier, interfaces.DeviceUID("DEV-1000"), "Recycler-X").Return(nil)
	provider.On("ProcessDevice", ids.Recycler, interfaces.DeviceUID("DEV-1000"), interfaces.ProcessingRecycle).Return(nil)

	provider.On("ConfirmCollection", ids.GreenPoint, interfaces.DeviceUID("DEV-1001"), "GreenPoint-B").Return(nil)
	provider.On("DeliverToRecycler", ids.Carrier, interfaces.DeviceUID("DEV-1001"), "Recycler-Y").Return(nil)
	provider.On("ProcessDevice", ids.Recycler, interfaces.DeviceUID("DEV-1001"), interfaces.ProcessingDestroy).Return(nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, seed(provider, ids, log))

	provider.AssertExpectations(t)
	provider.AssertNumberOfCalls(t, "GrantRole", 5)
	provider.AssertNumberOfCalls(t, "RegisterDevice", 10)
}

func TestSeedStopsOnGrantFailure(t *testing.T) {
	ids := testIdentities()

	provider := new(clients.MockRegistryProvider)
	provider.On("GrantRole", ids.Admin, ids.User, interfaces.RoleUser).
		Return(errors.New("server unreachable"))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := seed(provider, ids, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "granting User")

	provider.AssertNotCalled(t, "RegisterDevice", mock.Anything, mock.Anything)
}
