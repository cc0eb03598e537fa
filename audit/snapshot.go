// Package audit builds content-addressed snapshots of a device's full
// registry record for archival. A snapshot captures the device and its entire
// custody timeline at one moment; the archived bytes are addressed by their
// SHA-256 hash so any fetched copy can be verified against the ID it was
// stored under.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// Snapshot is the archived audit record for one device.
type Snapshot struct {
	Device  interfaces.Device `json:"device"`
	Hops    []interfaces.Hop  `json:"hops"`
	TakenAt uint64            `json:"taken_at"`
}

// TakeSnapshot reads a device and its history from the registry. Returns
// ErrNotFound for UIDs that were never registered; an empty timeline is not
// an error.
func TakeSnapshot(reg interfaces.DeviceRegistry, uid interfaces.DeviceUID, takenAt uint64) (*Snapshot, error) {
	device, err := reg.GetDevice(uid)
	if err != nil {
		return nil, fmt.Errorf("could not read device: %w", err)
	}
	if !device.Exists {
		return nil, fmt.Errorf("%w: uid %q", interfaces.ErrNotFound, uid)
	}

	hops, err := reg.GetHistory(uid)
	if err != nil {
		return nil, fmt.Errorf("could not read history: %w", err)
	}

	return &Snapshot{
		Device:  device,
		Hops:    hops,
		TakenAt: takenAt,
	}, nil
}

// Encode serializes the snapshot to the canonical archived form.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// ContentID returns the content address of the encoded snapshot.
func (s *Snapshot) ContentID() (interfaces.ContentID, error) {
	data, err := s.Encode()
	if err != nil {
		return interfaces.ContentID{}, err
	}
	return interfaces.ComputeID(data), nil
}

// Decode parses an archived snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	return &s, nil
}

// Verify checks fetched bytes against the content ID they were archived
// under and decodes them.
func Verify(data []byte, id interfaces.ContentID) (*Snapshot, error) {
	if actual := interfaces.ComputeID(data); !actual.Equal(id) {
		return nil, fmt.Errorf("snapshot content hash %s does not match id %s", actual, id)
	}
	return Decode(data)
}
