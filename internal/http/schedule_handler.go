package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type ScheduleHandler struct {
	scheduleService service.ScheduleService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, logger: logger}
}

// GET /api/schedules/daily?date=2026-03-10&tz=America/Chicago&show=on_time&hide=missed
//
// show/hide are comma-separated status lists overriding the default filter.
func (h *ScheduleHandler) Daily(w http.ResponseWriter, r *http.Request) {
	tz := r.URL.Query().Get("tz")
	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid timezone "+strconv.Quote(tz)))
			return
		}
		loc = l
	}

	// The date names a day in the requested zone, not the server's.
	day, err := parseDay(r, loc)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid date, want YYYY-MM-DD"))
		return
	}

	overrides := map[string]bool{}
	if show := r.URL.Query().Get("show"); show != "" {
		for _, s := range strings.Split(show, ",") {
			overrides[strings.TrimSpace(s)] = true
		}
	}
	if hide := r.URL.Query().Get("hide"); hide != "" {
		for _, s := range strings.Split(hide, ",") {
			overrides[strings.TrimSpace(s)] = false
		}
	}

	resp, err := h.scheduleService.DailySchedule(r.Context(), service.DailyScheduleRequest{
		Day:             day,
		Timezone:        tz,
		StatusOverrides: overrides,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type scheduleBody struct {
	Name       string  `json:"name"`
	CronExpr   string  `json:"cron_expr"`
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	DoseAmount float64 `json:"dose_amount"`
	Timezone   string  `json:"timezone"`
	Active     *bool   `json:"active"`
}

func (b *scheduleBody) toRequest() service.SaveScheduleRequest {
	req := service.SaveScheduleRequest{
		Name:       b.Name,
		CronExpr:   b.CronExpr,
		TargetType: b.TargetType,
		TargetID:   b.TargetID,
		DoseAmount: b.DoseAmount,
		Timezone:   b.Timezone,
		Active:     true,
	}
	if b.Active != nil {
		req.Active = *b.Active
	}
	return req
}

// Collection handles GET (list) and POST (create) on /api/schedules.
func (h *ScheduleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.scheduleService.ListSchedules(r.Context(), r.URL.Query().Get("active") == "true")
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body scheduleBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		id, err := h.scheduleService.CreateSchedule(r.Context(), body.toRequest())
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"schedule_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Dispatch routes /api/schedules/{id} and /api/schedules/{id}/describe.
func (h *ScheduleHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/schedules/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] != "":
		h.item(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "describe":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.describe(w, r, segments[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ScheduleHandler) item(w http.ResponseWriter, r *http.Request, scheduleID string) {
	switch r.Method {
	case http.MethodGet:
		sch, err := h.scheduleService.GetSchedule(r.Context(), scheduleID)
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(sch.ToJSON()))

	case http.MethodPut:
		var body scheduleBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		if err := h.scheduleService.UpdateSchedule(r.Context(), scheduleID, body.toRequest()); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		if err := h.scheduleService.DeleteSchedule(r.Context(), scheduleID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
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

// GET /api/schedules/{id}/describe
func (h *ScheduleHandler) describe(w http.ResponseWriter, r *http.Request, scheduleID string) {
	sch, err := h.scheduleService.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	resp, err := h.scheduleService.PreviewSchedule(r.Context(), service.PreviewScheduleRequest{
		CronExpr: sch.CronExpr,
		Timezone: sch.Timezone,
		Count:    parseInt(r.URL.Query().Get("count"), 5),
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type previewBody struct {
	CronExpr string `json:"cron_expr"`
	Timezone string `json:"timezone"`
	Count    int    `json:"count"`
}

// POST /api/schedules/preview — describe an expression before saving it.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var body previewBody
	if err := readBodyJSON(r, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
		return
	}
	resp, err := h.scheduleService.PreviewSchedule(r.Context(), service.PreviewScheduleRequest{
		CronExpr: body.CronExpr,
		Timezone: body.Timezone,
		Count:    body.Count,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// POST /api/schedules/materialize?date=2026-03-10
func (h *ScheduleHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r, time.Local)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid date, want YYYY-MM-DD"))
		return
	}
	resp, err := h.scheduleService.MaterializeDay(r.Context(), day)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
