package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

var (
	admin     = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000001"))
	user      = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000002"))
	green     = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000003"))
	carrier   = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000004"))
	recycler  = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000005"))
	inspector = interfaces.IdentityFromAddress(common.HexToAddress("0x1000000000000000000000000000000000000006"))
)

// newSeededLedger builds a ledger with all working roles granted and a
// deterministic clock ticking one second per call.
func newSeededLedger(t *testing.T) *Ledger {
	t.Helper()

	var now uint64 = 1700000000
	ledger := NewLedger(admin, func() uint64 {
		now++
		return now
	})

	for identity, role := range map[interfaces.Identity]interfaces.Role{
		user:      interfaces.RoleUser,
		green:     interfaces.RoleGreenPoint,
		carrier:   interfaces.RoleCarrier,
		recycler:  interfaces.RoleRecycler,
		inspector: interfaces.RoleInspector,
	} {
		_, err := ledger.GrantRole(admin, identity, role)
		require.NoError(t, err)
	}
	return ledger
}

func TestLedger_GetDeviceBeforeRegistration(t *testing.T) {
	ledger := NewLedger(admin, nil)

	device, err := ledger.GetDevice("DEV-404")
	require.NoError(t, err)
	assert.False(t, device.Exists)

	history, err := ledger.GetHistory("DEV-404")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_GrantRole(t *testing.T) {
	ledger := NewLedger(admin, nil)

	// Seed admin holds Admin from construction.
	held, err := ledger.HasRole(admin, interfaces.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, held)

	// Non-admin callers cannot grant, and the grant leaves no trace.
	_, err = ledger.GrantRole(user, user, interfaces.RoleUser)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	held, err = ledger.HasRole(user, interfaces.RoleUser)
	require.NoError(t, err)
	assert.False(t, held)

	// Admin grants, including Admin itself to another identity.
	_, err = ledger.GrantRole(admin, user, interfaces.RoleUser)
	require.NoError(t, err)
	_, err = ledger.GrantRole(admin, inspector, interfaces.RoleAdmin)
	require.NoError(t, err)

	held, err = ledger.HasRole(user, interfaces.RoleUser)
	require.NoError(t, err)
	assert.True(t, held)
	held, err = ledger.HasRole(inspector, interfaces.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, held)

	// Granting twice is an idempotent success.
	_, err = ledger.GrantRole(admin, user, interfaces.RoleUser)
	require.NoError(t, err)
	held, err = ledger.HasRole(user, interfaces.RoleUser)
	require.NoError(t, err)
	assert.True(t, held)

	// Out-of-range role values are rejected at the boundary.
	_, err = ledger.GrantRole(admin, user, interfaces.Role(42))
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)
}

func TestLedger_RegisterDevice(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)

	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.True(t, device.Exists)
	assert.Equal(t, interfaces.PhaseRegistered, device.Phase)
	assert.Equal(t, user, device.Owner)
	assert.Equal(t, "laptop", device.Category)

	// Registration appends no hop.
	history, err := ledger.GetHistory("DEV-1000")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_RegisterDevice_UIDReuseRejected(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)

	_, err = ledger.RegisterDevice(user, "DEV-1000", "tablet", interfaces.HazardHigh, interfaces.ConditionDamaged)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	// Hazard and condition are write-once: the first registration stands.
	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.Equal(t, interfaces.HazardLow, device.Hazard)
	assert.Equal(t, interfaces.ConditionFunctional, device.Condition)
	assert.Equal(t, "laptop", device.Category)
}

func TestLedger_RegisterDevice_InvalidArguments(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	_, err = ledger.RegisterDevice(user, "DEV-1000", "", interfaces.HazardLow, interfaces.ConditionFunctional)
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	_, err = ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.Hazard(9), interfaces.ConditionFunctional)
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	_, err = ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.Condition(9))
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.False(t, device.Exists)
}

func TestLedger_TransitionRequiresRole(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)

	// The user cannot collect, the carrier cannot collect, the green point
	// cannot transfer. None of the failures may touch state or history.
	_, err = ledger.ConfirmCollection(user, "DEV-1000", "GreenPoint-A")
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	_, err = ledger.ConfirmCollection(carrier, "DEV-1000", "GreenPoint-A")
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	_, err = ledger.RecordTransfer(green, "DEV-1000", "A", "B", "")
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
	_, err = ledger.ProcessDevice(green, "DEV-1000", interfaces.ProcessingRecycle)
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.Equal(t, interfaces.PhaseRegistered, device.Phase)
	assert.Equal(t, user, device.Owner)

	history, err := ledger.GetHistory("DEV-1000")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_RoleCheckedBeforeExistence(t *testing.T) {
	ledger := newSeededLedger(t)

	// Missing role on a missing device reports Unauthorized, not NotFound.
	_, err := ledger.ConfirmCollection(user, "DEV-404", "GreenPoint-A")
	assert.ErrorIs(t, err, interfaces.ErrUnauthorized)

	// With the role held, the missing device surfaces.
	_, err = ledger.ConfirmCollection(green, "DEV-404", "GreenPoint-A")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestLedger_PhaseNeverRegresses(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1000", "GreenPoint-A")
	require.NoError(t, err)

	// A second collection is a phase violation and appends nothing.
	_, err = ledger.ConfirmCollection(green, "DEV-1000", "GreenPoint-B")
	assert.ErrorIs(t, err, interfaces.ErrInvalidPhase)

	history, err := ledger.GetHistory("DEV-1000")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Processing straight from Collected skips the mandatory delivery.
	_, err = ledger.ProcessDevice(recycler, "DEV-1000", interfaces.ProcessingRecycle)
	assert.ErrorIs(t, err, interfaces.ErrInvalidPhase)

	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.Equal(t, interfaces.PhaseCollected, device.Phase)
}

// TestLedger_FullRoute drives the reference route: registration, collection,
// two transfer legs, delivery, processing.
func TestLedger_FullRoute(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1000", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1000", "GreenPoint-A")
	require.NoError(t, err)
	_, err = ledger.RecordTransfer(carrier, "DEV-1000", "GreenPoint-A", "Hub-1", "Leg 1")
	require.NoError(t, err)
	_, err = ledger.RecordTransfer(carrier, "DEV-1000", "Hub-1", "Recycler-X", "Leg 2")
	require.NoError(t, err)
	_, err = ledger.DeliverToRecycler(carrier, "DEV-1000", "Recycler-X")
	require.NoError(t, err)
	_, err = ledger.ProcessDevice(recycler, "DEV-1000", interfaces.ProcessingRecycle)
	require.NoError(t, err)

	device, err := ledger.GetDevice("DEV-1000")
	require.NoError(t, err)
	assert.Equal(t, interfaces.PhaseProcessed, device.Phase)
	assert.Equal(t, recycler, device.Owner)
	assert.Equal(t, interfaces.ProcessingRecycle, device.Disposition)

	// Collection + two legs + delivery, in call order, custody chained.
	history, err := ledger.GetHistory("DEV-1000")
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, user, history[0].From)
	assert.Equal(t, green, history[0].To)
	assert.Equal(t, "GreenPoint-A", history[0].ToSite)

	assert.Equal(t, green, history[1].From)
	assert.Equal(t, carrier, history[1].To)
	assert.Equal(t, "GreenPoint-A", history[1].FromSite)
	assert.Equal(t, "Hub-1", history[1].ToSite)
	assert.Equal(t, "Leg 1", history[1].Notes)

	assert.Equal(t, carrier, history[2].From)
	assert.Equal(t, carrier, history[2].To)
	assert.Equal(t, "Recycler-X", history[2].ToSite)

	assert.Equal(t, carrier, history[3].From)
	assert.Equal(t, "Recycler-X", history[3].ToSite)

	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].Timestamp, history[i-1].Timestamp)
	}
}

// TestLedger_DirectDelivery covers the short route with no transfer legs:
// InTransit is skippable, the terminal step is not.
func TestLedger_DirectDelivery(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1001", "tablet", interfaces.HazardMedium, interfaces.ConditionDamaged)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1001", "GreenPoint-B")
	require.NoError(t, err)
	_, err = ledger.DeliverToRecycler(carrier, "DEV-1001", "Recycler-Y")
	require.NoError(t, err)
	_, err = ledger.ProcessDevice(recycler, "DEV-1001", interfaces.ProcessingDestroy)
	require.NoError(t, err)

	device, err := ledger.GetDevice("DEV-1001")
	require.NoError(t, err)
	assert.Equal(t, interfaces.PhaseProcessed, device.Phase)
	assert.Equal(t, interfaces.ProcessingDestroy, device.Disposition)

	history, err := ledger.GetHistory("DEV-1001")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLedger_MultiLegTransfers(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1002", "monitor", interfaces.HazardHigh, interfaces.ConditionHazardous)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1002", "GreenPoint-A")
	require.NoError(t, err)

	// Every accepted transfer appends exactly one hop and keeps InTransit.
	legs := 5
	for i := 0; i < legs; i++ {
		_, err = ledger.RecordTransfer(carrier, "DEV-1002", "Hub", "Hub", "")
		require.NoError(t, err)

		device, err := ledger.GetDevice("DEV-1002")
		require.NoError(t, err)
		assert.Equal(t, interfaces.PhaseInTransit, device.Phase)
	}

	history, err := ledger.GetHistory("DEV-1002")
	require.NoError(t, err)
	assert.Len(t, history, 1+legs)
}

func TestLedger_ProcessRequiresDelivery(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1003", "mobile", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)

	_, err = ledger.ProcessDevice(recycler, "DEV-1003", interfaces.ProcessingRecycle)
	assert.ErrorIs(t, err, interfaces.ErrInvalidPhase)

	_, err = ledger.ProcessDevice(recycler, "DEV-1003", interfaces.ProcessingKind(7))
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)
}

func TestLedger_HistoryIsACopy(t *testing.T) {
	ledger := newSeededLedger(t)

	_, err := ledger.RegisterDevice(user, "DEV-1004", "desktop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1004", "GreenPoint-A")
	require.NoError(t, err)

	history, err := ledger.GetHistory("DEV-1004")
	require.NoError(t, err)
	require.Len(t, history, 1)
	history[0].Notes = "tampered"

	fresh, err := ledger.GetHistory("DEV-1004")
	require.NoError(t, err)
	assert.Empty(t, fresh[0].Notes)
}

func TestLedger_TimestampsClampedMonotonic(t *testing.T) {
	// A clock stepping backwards must not produce a decreasing timeline.
	times := []uint64{100, 50, 200, 10}
	i := 0
	clock := func() uint64 {
		ts := times[i%len(times)]
		i++
		return ts
	}

	ledger := NewLedger(admin, clock)
	for identity, role := range map[interfaces.Identity]interfaces.Role{
		user:    interfaces.RoleUser,
		green:   interfaces.RoleGreenPoint,
		carrier: interfaces.RoleCarrier,
	} {
		_, err := ledger.GrantRole(admin, identity, role)
		require.NoError(t, err)
	}

	_, err := ledger.RegisterDevice(user, "DEV-1005", "laptop", interfaces.HazardLow, interfaces.ConditionFunctional)
	require.NoError(t, err)
	_, err = ledger.ConfirmCollection(green, "DEV-1005", "GreenPoint-A")
	require.NoError(t, err)
	_, err = ledger.RecordTransfer(carrier, "DEV-1005", "A", "B", "")
	require.NoError(t, err)
	_, err = ledger.RecordTransfer(carrier, "DEV-1005", "B", "C", "")
	require.NoError(t, err)

	history, err := ledger.GetHistory("DEV-1005")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].Timestamp, history[i-1].Timestamp)
	}
}
