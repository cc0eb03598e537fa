package interfaces

import (
	"encoding/json"
	"fmt"
)

// Role is a named permission category gating which operations an identity may
// invoke. The set is closed; membership is grant-only.
type Role uint8

const (
	RoleAdmin Role = iota
	RoleUser
	RoleGreenPoint
	RoleCarrier
	RoleRecycler
	RoleInspector
)

var roleNames = map[Role]string{
	RoleAdmin:      "Admin",
	RoleUser:       "User",
	RoleGreenPoint: "GreenPoint",
	RoleCarrier:    "Carrier",
	RoleRecycler:   "Recycler",
	RoleInspector:  "Inspector",
}

// ParseRole converts a role name into a Role.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return Role(0), fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
}

// Valid checks that the role is a member of the closed enumeration.
func (r Role) Valid() error {
	if _, ok := roleNames[r]; !ok {
		return fmt.Errorf("%w: role value %d out of range", ErrInvalidArgument, r)
	}
	return nil
}

// String returns the role name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", r)
}

// MarshalJSON encodes the role as its name.
func (r Role) MarshalJSON() ([]byte, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes the role from its name.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Hazard classifies how dangerous a device is to handle. Set at registration
// and immutable afterwards.
type Hazard uint8

const (
	HazardLow Hazard = iota
	HazardMedium
	HazardHigh
)

var hazardNames = map[Hazard]string{
	HazardLow:    "Low",
	HazardMedium: "Medium",
	HazardHigh:   "High",
}

// ParseHazard converts a hazard name into a Hazard.
func ParseHazard(s string) (Hazard, error) {
	for h, name := range hazardNames {
		if name == s {
			return h, nil
		}
	}
	return Hazard(0), fmt.Errorf("%w: unknown hazard %q", ErrInvalidArgument, s)
}

// Valid checks that the hazard is a member of the closed enumeration.
func (h Hazard) Valid() error {
	if _, ok := hazardNames[h]; !ok {
		return fmt.Errorf("%w: hazard value %d out of range", ErrInvalidArgument, h)
	}
	return nil
}

// String returns the hazard name.
func (h Hazard) String() string {
	if name, ok := hazardNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hazard(%d)", h)
}

// MarshalJSON encodes the hazard as its name.
func (h Hazard) MarshalJSON() ([]byte, error) {
	if err := h.Valid(); err != nil {
		return nil, err
	}
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes the hazard from its name.
func (h *Hazard) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseHazard(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Condition describes the physical state of a device at registration. Set
// once and immutable afterwards.
type Condition uint8

const (
	ConditionFunctional Condition = iota
	ConditionDamaged
	ConditionHazardous
)

var conditionNames = map[Condition]string{
	ConditionFunctional: "Functional",
	ConditionDamaged:    "Damaged",
	ConditionHazardous:  "Hazardous",
}

// ParseCondition converts a condition name into a Condition.
func ParseCondition(s string) (Condition, error) {
	for c, name := range conditionNames {
		if name == s {
			return c, nil
		}
	}
	return Condition(0), fmt.Errorf("%w: unknown condition %q", ErrInvalidArgument, s)
}

// Valid checks that the condition is a member of the closed enumeration.
func (c Condition) Valid() error {
	if _, ok := conditionNames[c]; !ok {
		return fmt.Errorf("%w: condition value %d out of range", ErrInvalidArgument, c)
	}
	return nil
}

// String returns the condition name.
func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Condition(%d)", c)
}

// MarshalJSON encodes the condition as its name.
func (c Condition) MarshalJSON() ([]byte, error) {
	if err := c.Valid(); err != nil {
		return nil, err
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes the condition from its name.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Phase is a device's position in its fixed five-step lifecycle. Phases only
// advance forward; InTransit may repeat across multi-leg routes.
type Phase uint8

const (
	PhaseRegistered Phase = iota
	PhaseCollected
	PhaseInTransit
	PhaseDeliveredToRecycler
	PhaseProcessed
)

var phaseNames = map[Phase]string{
	PhaseRegistered:          "Registered",
	PhaseCollected:           "Collected",
	PhaseInTransit:           "InTransit",
	PhaseDeliveredToRecycler: "DeliveredToRecycler",
	PhaseProcessed:           "Processed",
}

// ParsePhase converts a phase name into a Phase.
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return Phase(0), fmt.Errorf("%w: unknown phase %q", ErrInvalidArgument, s)
}

// Valid checks that the phase is a member of the closed enumeration.
func (p Phase) Valid() error {
	if _, ok := phaseNames[p]; !ok {
		return fmt.Errorf("%w: phase value %d out of range", ErrInvalidArgument, p)
	}
	return nil
}

// String returns the phase name.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// MarshalJSON encodes the phase as its name.
func (p Phase) MarshalJSON() ([]byte, error) {
	if err := p.Valid(); err != nil {
		return nil, err
	}
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes the phase from its name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ProcessingKind is the terminal disposition chosen by the recycler.
type ProcessingKind uint8

const (
	ProcessingRecycle ProcessingKind = iota
	ProcessingDestroy
)

var processingKindNames = map[ProcessingKind]string{
	ProcessingRecycle: "Recycle",
	ProcessingDestroy: "Destroy",
}

// ParseProcessingKind converts a processing kind name into a ProcessingKind.
func ParseProcessingKind(s string) (ProcessingKind, error) {
	for k, name := range processingKindNames {
		if name == s {
			return k, nil
		}
	}
	return ProcessingKind(0), fmt.Errorf("%w: unknown processing kind %q", ErrInvalidArgument, s)
}

// Valid checks that the kind is a member of the closed enumeration.
func (k ProcessingKind) Valid() error {
	if _, ok := processingKindNames[k]; !ok {
		return fmt.Errorf("%w: processing kind value %d out of range", ErrInvalidArgument, k)
	}
	return nil
}

// String returns the processing kind name.
func (k ProcessingKind) String() string {
	if name, ok := processingKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ProcessingKind(%d)", k)
}

// MarshalJSON encodes the processing kind as its name.
func (k ProcessingKind) MarshalJSON() ([]byte, error) {
	if err := k.Valid(); err != nil {
		return nil, err
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the processing kind from its name.
func (k *ProcessingKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseProcessingKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
