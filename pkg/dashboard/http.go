package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mouthwatch/platform/pkg/calendar"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
)

type Handler struct {
	service *Service
	week    calendar.Week
}

func NewHandler(service *Service, week calendar.Week) *Handler {
	return &Handler{service: service, week: week}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/patients", h.handleListPatients).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", h.handleGetPatient).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/markers", h.handleListMarkers).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/annotations", h.handleAddAnnotation).Methods(http.MethodPost)
	r.HandleFunc("/patients/{id}/notes", h.handleSaveNotes).Methods(http.MethodPut)
	r.HandleFunc("/patients/{id}/scans", h.handleRecordScan).Methods(http.MethodPost)
	r.HandleFunc("/session", h.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/session/patient", h.handleSelectPatient).Methods(http.MethodPut)
	r.HandleFunc("/session/draft", h.handleUpdateDraft).Methods(http.MethodPut)
	r.HandleFunc("/session/view", h.handleSetView).Methods(http.MethodPut)
	r.HandleFunc("/session/severity", h.handleSetSeverity).Methods(http.MethodPut)
	r.HandleFunc("/session/framing", h.handleFrameMesh).Methods(http.MethodPost)
	r.HandleFunc("/session/mesh-reload", h.handleReloadMesh).Methods(http.MethodPost)
	r.HandleFunc("/picks", h.handleBeginPick).Methods(http.MethodPost)
	r.HandleFunc("/picks/{id}/confirm", h.handleConfirmPick).Methods(http.MethodPost)
	r.HandleFunc("/picks/{id}", h.handleCancelPick).Methods(http.MethodDelete)
	r.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodGet)
	r.HandleFunc("/config/display", h.handleDisplayConfig).Methods(http.MethodGet)
}

type placementRequest struct {
	Position *models.Vec3    `json:"position"`
	Severity models.Severity `json:"severity,omitempty"`
	Label    string          `json:"label"`
	Note     string          `json:"note"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type selectRequest struct {
	PatientID string `json:"patientId"`
}

type viewRequest struct {
	View View `json:"view"`
}

type severityRequest struct {
	Severity models.Severity `json:"severity"`
}

type boundsRequest struct {
	Min *models.Vec3 `json:"min"`
	Max *models.Vec3 `json:"max"`
}

type framingRequest struct {
	Bounds *boundsRequest `json:"bounds"`
}

func (req framingRequest) bounds() (Bounds, error) {
	if req.Bounds == nil || req.Bounds.Min == nil || req.Bounds.Max == nil {
		return Bounds{}, errors.New("bounds.min and bounds.max are required")
	}
	return Bounds{Min: *req.Bounds.Min, Max: *req.Bounds.Max}, nil
}

type pickRequest struct {
	Point *models.Vec3 `json:"point"`
}

type confirmRequest struct {
	Label string `json:"label"`
	Note  string `json:"note"`
}

func (h *Handler) handleListPatients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": h.service.Store().Patients()})
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.service.Store().Patient(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "failed to get patient")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"patient": patient})
}

func (h *Handler) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.service.Store().Markers(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "failed to list markers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": markers})
}

func (h *Handler) handleAddAnnotation(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Position == nil {
		http.Error(w, "position is required", http.StatusBadRequest)
		return
	}
	annotation, err := h.service.PlaceAnnotation(r.Context(), mux.Vars(r)["id"], *req.Position, req.Severity, req.Label, req.Note)
	if err != nil {
		writeError(w, err, "failed to add annotation")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"annotation": annotation})
}

func (h *Handler) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.service.SaveClinicalNotes(r.Context(), mux.Vars(r)["id"], req.Notes); err != nil {
		writeError(w, err, "failed to save notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": h.service.Store().Session()})
}

func (h *Handler) handleRecordScan(w http.ResponseWriter, r *http.Request) {
	var scan models.Scan
	if err := json.NewDecoder(r.Body).Decode(&scan); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.service.RecordScan(r.Context(), id, scan); err != nil {
		writeError(w, err, "failed to record scan")
		return
	}
	patient, err := h.service.Store().Patient(id)
	if err != nil {
		writeError(w, err, "failed to get patient")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"patient": patient})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": h.service.Store().Session(),
		"patient": h.service.Store().ActivePatient(),
	})
}

func (h *Handler) handleSelectPatient(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		http.Error(w, "patientId is required", http.StatusBadRequest)
		return
	}
	session, err := h.service.SelectPatient(r.Context(), req.PatientID)
	if err != nil {
		writeError(w, err, "failed to select patient")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.service.Store().UpdateDraft(req.Notes)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.service.Store().SetView(req.View); err != nil {
		writeError(w, err, "failed to set view")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetSeverity(w http.ResponseWriter, r *http.Request) {
	var req severityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	severity, err := models.ParseSeverity(string(req.Severity))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.Store().SetToolSeverity(severity); err != nil {
		writeError(w, err, "failed to set severity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFrameMesh(w http.ResponseWriter, r *http.Request) {
	var req framingRequest
	if !decode(w, r, &req) {
		return
	}
	bounds, err := req.bounds()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	framing, applied, err := h.service.FrameMesh(r.Context(), bounds)
	if err != nil {
		writeError(w, err, "failed to frame mesh")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applied": applied, "framing": framing})
}

func (h *Handler) handleReloadMesh(w http.ResponseWriter, r *http.Request) {
	h.service.Store().ReloadMesh()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBeginPick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Point == nil {
		http.Error(w, "point is required", http.StatusBadRequest)
		return
	}
	pick, err := h.service.BeginPick(r.Context(), *req.Point)
	if err != nil {
		writeError(w, err, "failed to begin pick")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"pick": pick})
}

func (h *Handler) handleConfirmPick(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	annotation, err := h.service.ConfirmPick(r.Context(), mux.Vars(r)["id"], req.Label, req.Note)
	if err != nil {
		writeError(w, err, "failed to confirm pick")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"annotation": annotation})
}

func (h *Handler) handleCancelPick(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelPick(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err, "failed to cancel pick")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := calendar.Build(h.service.Store().Patients(), h.week)
	writeJSON(w, http.StatusOK, map[string]interface{}{"schedule": schedule})
}

func (h *Handler) handleDisplayConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"severity": models.SeverityConfig,
		"legend":   models.Severities,
		"risk":     models.RiskConfig,
	})
}

func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrPlacementCancelled):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	case errors.Is(err, ErrPickNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// decode answers 400 and reports false when the body does not parse,
// including points that are not exactly three numbers.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, models.ErrInvalidVec3) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, "invalid request", http.StatusBadRequest)
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
