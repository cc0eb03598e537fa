package main

import (
	"fmt"
	"log/slog"

	"github.com/greenloop/ewaste-registry-backend/api"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// seedIdentities holds one identity per role, plus the admin that
// performs the grants.
type seedIdentities struct {
	Admin      interfaces.Identity
	User       interfaces.Identity
	GreenPoint interfaces.Identity
	Carrier    interfaces.Identity
	Recycler   interfaces.Identity
	Inspector  interfaces.Identity
}

// seed drives the demo dataset into the registry: five role grants,
// ten devices, and two fully walked routes.
func seed(client api.RegistryProvider, ids seedIdentities, logger *slog.Logger) error {
	grants := []struct {
		role     interfaces.Role
		identity interfaces.Identity
	}{
		{interfaces.RoleUser, ids.User},
		{interfaces.RoleGreenPoint, ids.GreenPoint},
		{interfaces.RoleCarrier, ids.Carrier},
		{interfaces.RoleRecycler, ids.Recycler},
		{interfaces.RoleInspector, ids.Inspector},
	}
	for _, grant := range grants {
		if err := client.GrantRole(ids.Admin, grant.identity, grant.role); err != nil {
			return fmt.Errorf("granting %s: %w", grant.role, err)
		}
		logger.Info("Role granted",
			slog.String("role", grant.role.String()),
			slog.String("identity", grant.identity.String()))
	}

	categories := []string{"laptop", "tablet", "mobile", "monitor", "desktop"}
	hazards := []interfaces.Hazard{interfaces.HazardLow, interfaces.HazardMedium, interfaces.HazardHigh}
	conditions := []interfaces.Condition{interfaces.ConditionFunctional, interfaces.ConditionDamaged, interfaces.ConditionHazardous}

	for i := 0; i < 10; i++ {
		uid := fmt.Sprintf("DEV-%d", 1000+i)
		err := client.RegisterDevice(ids.User, api.RegisterDeviceRequest{
			UID:       uid,
			Category:  categories[i%len(categories)],
			Hazard:    hazards[i%len(hazards)],
			Condition: conditions[i%len(conditions)],
		})
		if err != nil {
			return fmt.Errorf("registering %s: %w", uid, err)
		}
		logger.Info("Device registered", slog.String("uid", uid))
	}

	// Route #1: DEV-1000 through two transfer legs
	if err := client.ConfirmCollection(ids.GreenPoint, "DEV-1000", "GreenPoint-A"); err != nil {
		return err
	}
	if err := client.RecordTransfer(ids.Carrier, "DEV-1000", "GreenPoint-A", "Hub-1", "Leg 1"); err != nil {
		return err
	}
	if err := client.RecordTransfer(ids.Carrier, "DEV-1000", "Hub-1", "Recycler-X", "Leg 2"); err != nil {
		return err
	}
	if err := client.DeliverToRecycler(ids.Carrier, "DEV-1000", "Recycler-X"); err != nil {
		return err
	}
	if err := client.ProcessDevice(ids.Recycler, "DEV-1000", interfaces.ProcessingRecycle); err != nil {
		return err
	}
	logger.Info("Route complete", slog.String("uid", "DEV-1000"))

	// Route #2: DEV-1001 delivered directly from the green point
	if err := client.ConfirmCollection(ids.GreenPoint, "DEV-1001", "GreenPoint-B"); err != nil {
		return err
	}
	if err := client.DeliverToRecycler(ids.Carrier, "DEV-1001", "Recycler-Y"); err != nil {
		return err
	}
	if err := client.ProcessDevice(ids.Recycler, "DEV-1001", interfaces.ProcessingDestroy); err != nil {
		return err
	}
	logger.Info("Route complete", slog.String("uid", "DEV-1001"))

	logger.Info("Seed complete: roles set, 10 devices, 2 full routes")
	return nil
}
