package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/greenloop/ewaste-registry-backend/api"
	"github.com/greenloop/ewaste-registry-backend/audit"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// operationRecorder is the metrics surface the handler needs.
type operationRecorder interface {
	RecordOperation(operation, outcome string)
}

// Handler processes HTTP requests for the device lifecycle registry.
// Mutations are attributed to the identity carried in the
// X-Ewaste-Identity header; the handler trusts that attribution and
// lets the registry enforce roles and phase transitions.
type Handler struct {
	registry interfaces.DeviceRegistry
	storage  interfaces.StorageBackend
	metrics  operationRecorder
	log      *slog.Logger

	// now supplies snapshot timestamps, overridable in tests.
	now func() uint64
}

// NewHandler creates a handler over the given registry. The storage
// backend is used for audit snapshot archival and may be nil, in which
// case archive requests fail with 503.
func NewHandler(registry interfaces.DeviceRegistry, storage interfaces.StorageBackend, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		storage:  storage,
		log:      log,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

func (h *Handler) recordOperation(operation string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = api.ErrorKind(err)
	}
	h.metrics.RecordOperation(operation, outcome)
}

// callerIdentity extracts the attributed caller from the identity
// header. Missing or malformed headers fail the request with 400.
func (h *Handler) callerIdentity(w http.ResponseWriter, r *http.Request) (interfaces.Identity, bool) {
	raw := r.Header.Get(api.IdentityHeader)
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", "missing "+api.IdentityHeader+" header")
		return interfaces.Identity{}, false
	}

	identity, err := interfaces.NewIdentityFromHex(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", "invalid identity header: "+err.Error())
		return interfaces.Identity{}, false
	}
	return identity, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, kind, msg string) {
	h.writeJSON(w, status, api.ErrorResponse{Kind: kind, Error: msg})
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	h.writeJSON(w, api.StatusFromError(err), api.ErrorResponse{
		Kind:  api.ErrorKind(err),
		Error: err.Error(),
	})
}

// HandleGrantRole processes POST /api/admin/roles.
func (h *Handler) HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.GrantRoleRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	_, err := h.registry.GrantRole(caller, req.Identity, req.Role)
	h.recordOperation("grant_role", err)
	if err != nil {
		h.log.Info("Role grant rejected", "err", err,
			slog.String("caller", caller.String()),
			slog.String("identity", req.Identity.String()))
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Role granted",
		slog.String("caller", caller.String()),
		slog.String("identity", req.Identity.String()),
		slog.String("role", req.Role.String()))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "granted"})
}

// HandleHasRole processes GET /api/public/roles/{role}/{identity}.
func (h *Handler) HandleHasRole(w http.ResponseWriter, r *http.Request) {
	role, err := interfaces.ParseRole(r.PathValue("role"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	identity, err := interfaces.NewIdentityFromHex(r.PathValue("identity"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	hasRole, err := h.registry.HasRole(identity, role)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.HasRoleResponse{
		Identity: identity,
		Role:     role,
		HasRole:  hasRole,
	})
}

// HandleRegisterDevice processes POST /api/devices.
func (h *Handler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.RegisterDeviceRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	_, err := h.registry.RegisterDevice(caller, interfaces.DeviceUID(req.UID), req.Category, req.Hazard, req.Condition)
	h.recordOperation("register_device", err)
	if err != nil {
		h.log.Info("Device registration rejected", "err", err,
			slog.String("caller", caller.String()),
			slog.String("uid", req.UID))
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Device registered",
		slog.String("caller", caller.String()),
		slog.String("uid", req.UID),
		slog.String("category", req.Category))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "registered"})
}

// HandleConfirmCollection processes POST /api/devices/{uid}/collection.
func (h *Handler) HandleConfirmCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.CollectionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	uid := interfaces.DeviceUID(r.PathValue("uid"))
	_, err := h.registry.ConfirmCollection(caller, uid, req.Site)
	h.recordOperation("confirm_collection", err)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Collection confirmed",
		slog.String("caller", caller.String()),
		slog.String("uid", uid.String()),
		slog.String("site", req.Site))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "collected"})
}

// HandleRecordTransfer processes POST /api/devices/{uid}/transfers.
func (h *Handler) HandleRecordTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.TransferRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	uid := interfaces.DeviceUID(r.PathValue("uid"))
	_, err := h.registry.RecordTransfer(caller, uid, req.FromSite, req.ToSite, req.Notes)
	h.recordOperation("record_transfer", err)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Transfer recorded",
		slog.String("caller", caller.String()),
		slog.String("uid", uid.String()),
		slog.String("from", req.FromSite),
		slog.String("to", req.ToSite))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "in_transit"})
}

// HandleDeliverToRecycler processes POST /api/devices/{uid}/delivery.
func (h *Handler) HandleDeliverToRecycler(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.DeliveryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	uid := interfaces.DeviceUID(r.PathValue("uid"))
	_, err := h.registry.DeliverToRecycler(caller, uid, req.RecyclerSite)
	h.recordOperation("deliver_to_recycler", err)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Device delivered to recycler",
		slog.String("caller", caller.String()),
		slog.String("uid", uid.String()),
		slog.String("site", req.RecyclerSite))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "delivered"})
}

// HandleProcessDevice processes POST /api/devices/{uid}/processing.
func (h *Handler) HandleProcessDevice(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	var req api.ProcessingRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	uid := interfaces.DeviceUID(r.PathValue("uid"))
	_, err := h.registry.ProcessDevice(caller, uid, req.Kind)
	h.recordOperation("process_device", err)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	h.log.Info("Device processed",
		slog.String("caller", caller.String()),
		slog.String("uid", uid.String()),
		slog.String("kind", req.Kind.String()))
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "processed"})
}

// HandleGetDevice processes GET /api/public/devices/{uid}.
func (h *Handler) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	uid := interfaces.DeviceUID(r.PathValue("uid"))

	device, err := h.registry.GetDevice(uid)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	if !device.Exists {
		h.writeError(w, http.StatusNotFound, "not_found", "device not registered: "+uid.String())
		return
	}

	h.writeJSON(w, http.StatusOK, device)
}

// HandleGetHistory processes GET /api/public/devices/{uid}/history.
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	uid := interfaces.DeviceUID(r.PathValue("uid"))

	device, err := h.registry.GetDevice(uid)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	if !device.Exists {
		h.writeError(w, http.StatusNotFound, "not_found", "device not registered: "+uid.String())
		return
	}

	hops, err := h.registry.GetHistory(uid)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	if hops == nil {
		hops = []interfaces.Hop{}
	}

	h.writeJSON(w, http.StatusOK, api.HistoryResponse{UID: uid.String(), Hops: hops})
}

// HandleArchiveDevice processes POST /api/devices/{uid}/archive. It
// builds a content-addressed snapshot of the device record and stores
// it to the configured archive backends.
func (h *Handler) HandleArchiveDevice(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerIdentity(w, r)
	if !ok {
		return
	}

	if h.storage == nil {
		h.writeError(w, http.StatusServiceUnavailable, "internal", "no archive storage configured")
		return
	}

	uid := interfaces.DeviceUID(r.PathValue("uid"))
	snapshot, err := audit.TakeSnapshot(h.registry, uid, h.now())
	h.recordOperation("archive_device", err)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}

	data, err := snapshot.Encode()
	if err != nil {
		h.log.Error("Failed to encode snapshot", "err", err, slog.String("uid", uid.String()))
		h.writeError(w, http.StatusInternalServerError, "internal", "failed to encode snapshot")
		return
	}

	id, err := h.storage.Store(r.Context(), data, interfaces.SnapshotType)
	if err != nil {
		h.log.Error("Failed to store snapshot", "err", err, slog.String("uid", uid.String()))
		h.writeError(w, http.StatusInternalServerError, "internal", "failed to store snapshot: "+err.Error())
		return
	}

	h.log.Info("Device snapshot archived",
		slog.String("caller", caller.String()),
		slog.String("uid", uid.String()),
		slog.String("content_id", id.String()))
	h.writeJSON(w, http.StatusOK, api.ArchiveResponse{
		UID:       uid.String(),
		ContentID: id.String(),
		Backends:  strings.Split(h.storage.LocationURI(), ","),
	})
}
