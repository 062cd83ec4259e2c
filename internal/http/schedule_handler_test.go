package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

func newScheduleTestRouter(t *testing.T) (*Router, *repository.MemoryMedicationsRepo, *repository.MemoryCareTasksRepo) {
	t.Helper()
	logger := zap.NewNop()
	medsRepo := repository.NewMemoryMedicationsRepo()
	tasksRepo := repository.NewMemoryCareTasksRepo()
	schedulesRepo := repository.NewMemorySchedulesRepo()

	svc := service.NewScheduleService(medsRepo, tasksRepo, schedulesRepo, logger)
	router := NewRouter(logger)
	router.RegisterScheduleRoutes(NewScheduleHandler(svc, logger))
	return router, medsRepo, tasksRepo
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestDailyScheduleEndpoint(t *testing.T) {
	router, medsRepo, tasksRepo := newScheduleTestRouter(t)
	ctx := context.Background()

	medID, err := medsRepo.CreateMedication(ctx, &domain.Medication{
		Name: "Lisinopril", Dosage: "10", Unit: "mg", Active: true,
	})
	require.NoError(t, err)

	// A dose later today stays pending; the endpoint should surface it.
	scheduled := time.Now().Add(30 * time.Minute)
	_, err = medsRepo.CreateDoseEvent(ctx, &domain.DoseEvent{
		MedicationID: medID, ScheduledTime: scheduled, DoseAmount: 1,
	})
	require.NoError(t, err)

	_, err = tasksRepo.CreateCareTask(ctx, &domain.CareTask{
		Title:         "Wound check",
		ScheduledTime: sql.NullTime{Time: scheduled.Add(time.Minute), Valid: true},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/daily?date="+scheduled.Format("2006-01-02"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(ResultSuccess), envelope["code"])

	result := envelope["result"].(map[string]any)
	assert.Equal(t, float64(2), result["total"])
	counts := result["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["ready_to_take"])
}

func TestDailyScheduleEndpoint_DateInRequestedTimezone(t *testing.T) {
	router, medsRepo, _ := newScheduleTestRouter(t)
	ctx := context.Background()

	medID, err := medsRepo.CreateMedication(ctx, &domain.Medication{
		Name: "Warfarin", Dosage: "5", Unit: "mg", Active: true,
	})
	require.NoError(t, err)

	// A late-evening dose in Chicago falls on the next calendar day in
	// UTC. Asking for the Chicago date must still find it.
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	scheduled := time.Date(2026, 3, 10, 23, 30, 0, 0, chicago)
	_, err = medsRepo.CreateDoseEvent(ctx, &domain.DoseEvent{
		MedicationID: medID, ScheduledTime: scheduled, DoseAmount: 1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/daily?date=2026-03-10&tz=America/Chicago&show=missed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	result := decodeEnvelope(t, w)["result"].(map[string]any)
	assert.Equal(t, float64(1), result["total"])
}

func TestDailyScheduleEndpoint_RejectsBadTimezone(t *testing.T) {
	router, _, _ := newScheduleTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/daily?tz=Mars/Olympus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(ResultError), envelope["code"])
	assert.Contains(t, envelope["message"], "invalid timezone")
}

func TestScheduleCRUDEndpoints(t *testing.T) {
	router, _, _ := newScheduleTestRouter(t)

	// Create.
	body := `{"name":"Morning meds","cron_expr":"0 8 * * *","target_type":"care_task","timezone":"UTC"}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedules", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.Equal(t, float64(ResultSuccess), envelope["code"])
	scheduleID := envelope["result"].(map[string]any)["schedule_id"].(string)
	require.NotEmpty(t, scheduleID)

	// Describe.
	req = httptest.NewRequest(http.MethodGet, "/api/schedules/"+scheduleID+"/describe", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope = decodeEnvelope(t, w)
	result := envelope["result"].(map[string]any)
	assert.Equal(t, "Daily at 8:00 AM", result["description"])

	// Delete.
	req = httptest.NewRequest(http.MethodDelete, "/api/schedules/"+scheduleID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Gone now.
	req = httptest.NewRequest(http.MethodGet, "/api/schedules/"+scheduleID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleCreate_RejectsBadCron(t *testing.T) {
	router, _, _ := newScheduleTestRouter(t)

	body := `{"name":"Bad","cron_expr":"whenever","target_type":"care_task"}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedules", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(ResultError), envelope["code"])
	assert.Contains(t, envelope["message"], "invalid cron expression")
}

func TestScheduleDaily_MethodNotAllowed(t *testing.T) {
	router, _, _ := newScheduleTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/schedules/daily", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
