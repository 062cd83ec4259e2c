package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type MedicationHandler struct {
	medicationService service.MedicationService
	logger            *zap.Logger
}

func NewMedicationHandler(medicationService service.MedicationService, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService, logger: logger}
}

// GET /api/medications
func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("active") == "true")
}

// GET /api/medications/active
func (h *MedicationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *MedicationHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	resp, err := h.medicationService.ListMedications(r.Context(), service.ListMedicationsRequest{ActiveOnly: activeOnly})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": toJSONList(resp.Items),
		"total": resp.Total,
	}))
}

type medicationBody struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Unit         string `json:"unit"`
	Instructions string `json:"instructions"`
	CategoryID   string `json:"category_id"`
	PatientID    string `json:"patient_id"`
	Active       *bool  `json:"active"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (b *medicationBody) toRequest() (service.CreateMedicationRequest, error) {
	req := service.CreateMedicationRequest{
		Name:         b.Name,
		Dosage:       b.Dosage,
		Unit:         b.Unit,
		Instructions: b.Instructions,
		CategoryID:   b.CategoryID,
		PatientID:    b.PatientID,
		Active:       true,
	}
	if b.Active != nil {
		req.Active = *b.Active
	}
	var err error
	if req.StartDate, err = parseTimePtr(b.StartDate); err != nil {
		return req, err
	}
	if req.EndDate, err = parseTimePtr(b.EndDate); err != nil {
		return req, err
	}
	return req, nil
}

// POST /api/add/medication
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body medicationBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	id, err := h.medicationService.CreateMedication(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"medication_id": id}))
}

// Dispatch routes /api/medications/{id} and /api/medications/{id}/administer.
func (h *MedicationHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/medications/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] != "":
		h.item(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "administer":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.administer(w, r, segments[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *MedicationHandler) item(w http.ResponseWriter, r *http.Request, medicationID string) {
	switch r.Method {
	case http.MethodGet:
		med, err := h.medicationService.GetMedication(r.Context(), medicationID)
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("medication not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(med.ToJSON()))

	case http.MethodPut:
		var body medicationBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		req, err := body.toRequest()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		if err := h.medicationService.UpdateMedication(r.Context(), medicationID, req); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("medication not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		// Deactivation, not a hard delete: dose history stays queryable.
		if err := h.medicationService.DeactivateMedication(r.Context(), medicationID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("medication not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("deactivated"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type administerBody struct {
	DoseID  string   `json:"dose_id"`
	Amount  *float64 `json:"amount"`
	TakenAt string   `json:"taken_at"`
	Notes   string   `json:"notes"`
}

// POST /api/medications/{id}/administer
func (h *MedicationHandler) administer(w http.ResponseWriter, r *http.Request, medicationID string) {
	var body administerBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
		return
	}
	if body.Amount == nil {
		writeJSON(w, http.StatusOK, Fail("amount is required (0 records a skip)"))
		return
	}

	takenAt, err := parseTimePtr(body.TakenAt)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid taken_at"))
		return
	}

	req := service.AdministerDoseRequest{
		DoseID:  body.DoseID,
		Amount:  *body.Amount,
		TakenAt: takenAt,
		Notes:   body.Notes,
	}
	if err := h.medicationService.AdministerMedication(r.Context(), medicationID, req); err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusNotFound, Fail("dose not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	recordedAt := time.Now()
	if takenAt != nil {
		recordedAt = *takenAt
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"recorded_at": recordedAt,
		"skipped":     *body.Amount == 0,
	}))
}
