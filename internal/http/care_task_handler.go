package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type CareTaskHandler struct {
	careTaskService service.CareTaskService
	logger          *zap.Logger
}

func NewCareTaskHandler(careTaskService service.CareTaskService, logger *zap.Logger) *CareTaskHandler {
	return &CareTaskHandler{careTaskService: careTaskService, logger: logger}
}

type careTaskBody struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id"`
	PatientID     string `json:"patient_id"`
	ScheduledTime string `json:"scheduled_time"`
}

func (b *careTaskBody) toRequest() (service.SaveCareTaskRequest, error) {
	req := service.SaveCareTaskRequest{
		Title:       b.Title,
		Description: b.Description,
		CategoryID:  b.CategoryID,
		PatientID:   b.PatientID,
	}
	var err error
	req.ScheduledTime, err = parseTimePtr(b.ScheduledTime)
	return req, err
}

// Collection handles GET (list, ?open=true) and POST on /api/care-tasks.
func (h *CareTaskHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.careTaskService.ListCareTasks(r.Context(), r.URL.Query().Get("open") == "true")
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body careTaskBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		req, err := body.toRequest()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid scheduled_time"))
			return
		}
		id, err := h.careTaskService.CreateCareTask(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"task_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Dispatch routes /api/care-tasks/{id} and /api/care-tasks/{id}/complete.
func (h *CareTaskHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/care-tasks/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] != "":
		h.item(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "complete":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.complete(w, r, segments[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *CareTaskHandler) item(w http.ResponseWriter, r *http.Request, taskID string) {
	switch r.Method {
	case http.MethodGet:
		task, err := h.careTaskService.GetCareTask(r.Context(), taskID)
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("care task not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(task.ToJSON()))

	case http.MethodPut:
		var body careTaskBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		req, err := body.toRequest()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid scheduled_time"))
			return
		}
		if err := h.careTaskService.UpdateCareTask(r.Context(), taskID, req); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("care task not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		if err := h.careTaskService.DeleteCareTask(r.Context(), taskID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("care task not found"))
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

type completeTaskBody struct {
	CompletedBy string `json:"completed_by"`
	CompletedAt string `json:"completed_at"`
	Skipped     bool   `json:"skipped"`
}

// POST /api/care-tasks/{id}/complete
func (h *CareTaskHandler) complete(w http.ResponseWriter, r *http.Request, taskID string) {
	var body completeTaskBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
		return
	}
	completedAt, err := parseTimePtr(body.CompletedAt)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid completed_at"))
		return
	}

	err = h.careTaskService.CompleteCareTask(r.Context(), service.CompleteCareTaskRequest{
		TaskID:      taskID,
		CompletedBy: body.CompletedBy,
		CompletedAt: completedAt,
		Skipped:     body.Skipped,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusNotFound, Fail("care task not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok("completed"))
}
