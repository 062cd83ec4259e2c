package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type VitalsHandler struct {
	vitalsService service.VitalsService
	logger        *zap.Logger
}

func NewVitalsHandler(vitalsService service.VitalsService, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{vitalsService: vitalsService, logger: logger}
}

// GET /api/vitals/latest
func (h *VitalsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.vitalsService.LatestReadings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(latest))
}

// Dispatch routes /api/vitals/{metric} (POST manual entry) and
// /api/vitals/{metric}/history (GET).
func (h *VitalsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/vitals/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] != "":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.record(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "history":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.history(w, r, segments[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type readingBody struct {
	Value   *float64 `json:"value"`
	Unit    string   `json:"unit"`
	TakenAt string   `json:"taken_at"`
}

// POST /api/vitals/{metric}
func (h *VitalsHandler) record(w http.ResponseWriter, r *http.Request, metric string) {
	var body readingBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
		return
	}
	if body.Value == nil {
		writeJSON(w, http.StatusOK, Fail("value is required"))
		return
	}
	takenAt, err := parseTimePtr(body.TakenAt)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid taken_at"))
		return
	}

	id, err := h.vitalsService.RecordReading(r.Context(), service.RecordReadingRequest{
		Metric:  metric,
		Value:   *body.Value,
		Unit:    body.Unit,
		TakenAt: takenAt,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"reading_id": id}))
}

// historyWindow reads ?from/?to query params, defaulting to the past week.
func historyWindow(r *http.Request) (time.Time, time.Time, error) {
	from := time.Now().AddDate(0, 0, -7)
	to := time.Now().Add(time.Minute)

	if p, err := parseTimePtr(r.URL.Query().Get("from")); err != nil {
		return from, to, err
	} else if p != nil {
		from = *p
	}
	if p, err := parseTimePtr(r.URL.Query().Get("to")); err != nil {
		return from, to, err
	} else if p != nil {
		to = *p
	}
	return from, to, nil
}

// GET /api/vitals/{metric}/history?from=...&to=...&limit=100
func (h *VitalsHandler) history(w http.ResponseWriter, r *http.Request, metric string) {
	from, to, err := historyWindow(r)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid from/to"))
		return
	}

	items, err := h.vitalsService.ListReadings(r.Context(), metric, from, to, parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": toJSONList(items),
		"total": len(items),
	}))
}

type bloodPressureBody struct {
	Systolic  int    `json:"systolic"`
	Diastolic int    `json:"diastolic"`
	Pulse     int    `json:"pulse"`
	TakenAt   string `json:"taken_at"`
}

// BloodPressure handles GET (history) and POST on /api/vitals/blood-pressure.
func (h *VitalsHandler) BloodPressure(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to, err := historyWindow(r)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid from/to"))
			return
		}
		items, err := h.vitalsService.ListBloodPressure(r.Context(), from, to, parseInt(r.URL.Query().Get("limit"), 0))
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body bloodPressureBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		takenAt, err := parseTimePtr(body.TakenAt)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid taken_at"))
			return
		}
		id, err := h.vitalsService.RecordBloodPressure(r.Context(), service.RecordBloodPressureRequest{
			Systolic:  body.Systolic,
			Diastolic: body.Diastolic,
			Pulse:     body.Pulse,
			TakenAt:   takenAt,
		})
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		// The derived MAP goes straight back so the form can show it.
		bp := domain.BloodPressureReading{Systolic: body.Systolic, Diastolic: body.Diastolic}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"reading_id": id,
			"map":        bp.MAP(),
		}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type mealBody struct {
	MealType    string `json:"meal_type"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	Amount      string `json:"amount"`
	EatenAt     string `json:"eaten_at"`
}

// Nutrition handles GET (?date=) and POST on /api/nutrition.
func (h *VitalsHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		day, err := parseDay(r, time.Local)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid date, want YYYY-MM-DD"))
			return
		}
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		items, err := h.vitalsService.ListMealsForDay(r.Context(), dayStart)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body mealBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		eatenAt, err := parseTimePtr(body.EatenAt)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid eaten_at"))
			return
		}
		id, err := h.vitalsService.RecordMeal(r.Context(), service.RecordMealRequest{
			MealType:    body.MealType,
			Description: body.Description,
			Calories:    body.Calories,
			Amount:      body.Amount,
			EatenAt:     eatenAt,
		})
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"entry_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// NutritionItem handles DELETE /api/nutrition/{id}.
func (h *VitalsHandler) NutritionItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entryID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/nutrition/"), "/")
	if err := h.vitalsService.DeleteMeal(r.Context(), entryID); err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusNotFound, Fail("meal entry not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok("deleted"))
}

type bathroomBody struct {
	EventType  string `json:"event_type"`
	Notes      string `json:"notes"`
	OccurredAt string `json:"occurred_at"`
}

// BathroomEvents handles GET (?date=) and POST on /api/bathroom-events.
func (h *VitalsHandler) BathroomEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		day, err := parseDay(r, time.Local)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid date, want YYYY-MM-DD"))
			return
		}
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		items, err := h.vitalsService.ListBathroomEventsForDay(r.Context(), dayStart)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body bathroomBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		occurredAt, err := parseTimePtr(body.OccurredAt)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid occurred_at"))
			return
		}
		id, err := h.vitalsService.RecordBathroomEvent(r.Context(), service.RecordBathroomEventRequest{
			EventType:  body.EventType,
			Notes:      body.Notes,
			OccurredAt: occurredAt,
		})
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"event_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// BathroomEventItem handles DELETE /api/bathroom-events/{id}.
func (h *VitalsHandler) BathroomEventItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	eventID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/bathroom-events/"), "/")
	if err := h.vitalsService.DeleteBathroomEvent(r.Context(), eventID); err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusNotFound, Fail("bathroom event not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok("deleted"))
}
