package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// ============================================
// Patients
// ============================================

type patientBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Notes     string `json:"notes"`
}

func (b *patientBody) toRequest() (service.SavePatientRequest, error) {
	req := service.SavePatientRequest{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Notes:     b.Notes,
	}
	var err error
	req.BirthDate, err = parseTimePtr(b.BirthDate)
	return req, err
}

// Patients handles GET and POST on /api/patients.
func (h *AdminHandler) Patients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.adminService.ListPatients(r.Context())
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body patientBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		req, err := body.toRequest()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid birth_date"))
			return
		}
		id, err := h.adminService.CreatePatient(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"patient_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PatientItem handles GET/PUT/DELETE on /api/patients/{id}.
func (h *AdminHandler) PatientItem(w http.ResponseWriter, r *http.Request) {
	patientID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/patients/"), "/")
	if patientID == "" || strings.Contains(patientID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.adminService.GetPatient(r.Context(), patientID)
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("patient not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(p.ToJSON()))

	case http.MethodPut:
		var body patientBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		req, err := body.toRequest()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid birth_date"))
			return
		}
		if err := h.adminService.UpdatePatient(r.Context(), patientID, req); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("patient not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		if err := h.adminService.DeletePatient(r.Context(), patientID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("patient not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("deleted"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ============================================
// Categories
// ============================================

type categoryBody struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

// Categories handles GET (?kind=) and POST on /api/categories.
func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.adminService.ListCategories(r.Context(), r.URL.Query().Get("kind"))
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body categoryBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		id, err := h.adminService.CreateCategory(r.Context(), service.SaveCategoryRequest{
			Name:  body.Name,
			Kind:  body.Kind,
			Color: body.Color,
		})
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"category_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CategoryItem handles PUT/DELETE on /api/categories/{id}.
func (h *AdminHandler) CategoryItem(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/categories/"), "/")
	if categoryID == "" || strings.Contains(categoryID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body categoryBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		err := h.adminService.UpdateCategory(r.Context(), categoryID, service.SaveCategoryRequest{
			Name:  body.Name,
			Kind:  body.Kind,
			Color: body.Color,
		})
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("category not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		if err := h.adminService.DeleteCategory(r.Context(), categoryID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("category not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("deleted"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
