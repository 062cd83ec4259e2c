package httpapi

import (
	"bytes"
	"context"
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

func newMedicationTestRouter(t *testing.T) (*Router, *repository.MemoryMedicationsRepo) {
	t.Helper()
	logger := zap.NewNop()
	medsRepo := repository.NewMemoryMedicationsRepo()

	svc := service.NewMedicationService(medsRepo, logger)
	router := NewRouter(logger)
	router.RegisterMedicationRoutes(NewMedicationHandler(svc, logger))
	return router, medsRepo
}

func TestCreateAndListMedications(t *testing.T) {
	router, _ := newMedicationTestRouter(t)

	body := `{"name":"Lisinopril","dosage":"10","unit":"mg","instructions":"With water"}`
	req := httptest.NewRequest(http.MethodPost, "/api/add/medication", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.Equal(t, float64(ResultSuccess), envelope["code"])
	medicationID := envelope["result"].(map[string]any)["medication_id"].(string)
	require.NotEmpty(t, medicationID)

	req = httptest.NewRequest(http.MethodGet, "/api/medications/active", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope = decodeEnvelope(t, w)
	result := envelope["result"].(map[string]any)
	assert.Equal(t, float64(1), result["total"])
	items := result["items"].([]any)
	assert.Equal(t, "Lisinopril", items[0].(map[string]any)["name"])
}

func TestDeactivateMedication_HidesFromActiveList(t *testing.T) {
	router, medsRepo := newMedicationTestRouter(t)

	medID, err := medsRepo.CreateMedication(context.Background(), &domain.Medication{
		Name: "Aspirin", Dosage: "81", Unit: "mg", Active: true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/medications/"+medID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/medications/active", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(0), envelope["result"].(map[string]any)["total"])

	// Still present on the full list for history.
	req = httptest.NewRequest(http.MethodGet, "/api/medications", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	envelope = decodeEnvelope(t, w)
	assert.Equal(t, float64(1), envelope["result"].(map[string]any)["total"])
}

func TestAdministerScheduledDose(t *testing.T) {
	router, medsRepo := newMedicationTestRouter(t)
	ctx := context.Background()

	medID, err := medsRepo.CreateMedication(ctx, &domain.Medication{
		Name: "Metformin", Dosage: "500", Unit: "mg", Active: true,
	})
	require.NoError(t, err)

	doseID, err := medsRepo.CreateDoseEvent(ctx, &domain.DoseEvent{
		MedicationID: medID, ScheduledTime: time.Now(), DoseAmount: 1,
	})
	require.NoError(t, err)

	body := `{"dose_id":"` + doseID + `","amount":1,"notes":"with breakfast"}`
	req := httptest.NewRequest(http.MethodPost, "/api/medications/"+medID+"/administer", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.Equal(t, float64(ResultSuccess), envelope["code"])
	assert.Equal(t, false, envelope["result"].(map[string]any)["skipped"])

	dose, err := medsRepo.GetDoseEvent(ctx, doseID)
	require.NoError(t, err)
	assert.True(t, dose.Completed())
	assert.Equal(t, 1.0, dose.ActualDose.Float64)
}

func TestAdministerAdHocDose_CreatesDoseEvent(t *testing.T) {
	router, medsRepo := newMedicationTestRouter(t)
	ctx := context.Background()

	medID, err := medsRepo.CreateMedication(ctx, &domain.Medication{
		Name: "Tylenol", Dosage: "500", Unit: "mg", Active: true,
	})
	require.NoError(t, err)

	body := `{"amount":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/medications/"+medID+"/administer", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.Equal(t, float64(ResultSuccess), envelope["code"])

	dayStart := time.Now().Truncate(24 * time.Hour)
	doses, err := medsRepo.ListDoseEventsForDay(ctx, dayStart)
	require.NoError(t, err)
	require.Len(t, doses, 1)
	assert.True(t, doses[0].Completed())
	assert.Equal(t, 2.0, doses[0].ActualDose.Float64)
}

func TestAdminister_MissingAmount(t *testing.T) {
	router, _ := newMedicationTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/medications/some-id/administer", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(ResultError), envelope["code"])
}

func TestAdminister_UnknownDose(t *testing.T) {
	router, _ := newMedicationTestRouter(t)

	body := `{"dose_id":"nope","amount":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/medications/some-id/administer", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
