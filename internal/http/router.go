package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; no third-party router
// is needed for a surface this size.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterHealthRoutes exposes the liveness probe.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", methodOnly(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	}))
}

func (r *Router) RegisterMedicationRoutes(h *MedicationHandler) {
	r.Handle("/api/medications", methodOnly(http.MethodGet, h.List))
	r.Handle("/api/medications/active", methodOnly(http.MethodGet, h.ListActive))
	r.Handle("/api/add/medication", methodOnly(http.MethodPost, h.Create))
	// /api/medications/{id}[/administer]
	r.Handle("/api/medications/", h.Dispatch)
}

func (r *Router) RegisterScheduleRoutes(h *ScheduleHandler) {
	r.Handle("/api/schedules/daily", methodOnly(http.MethodGet, h.Daily))
	r.Handle("/api/schedules/preview", methodOnly(http.MethodPost, h.Preview))
	r.Handle("/api/schedules/materialize", methodOnly(http.MethodPost, h.Materialize))
	r.Handle("/api/schedules", h.Collection)
	// /api/schedules/{id}[/describe]
	r.Handle("/api/schedules/", h.Dispatch)
}

func (r *Router) RegisterCareTaskRoutes(h *CareTaskHandler) {
	r.Handle("/api/care-tasks", h.Collection)
	// /api/care-tasks/{id}[/complete]
	r.Handle("/api/care-tasks/", h.Dispatch)
}

func (r *Router) RegisterVitalsRoutes(h *VitalsHandler) {
	r.Handle("/api/vitals/latest", methodOnly(http.MethodGet, h.Latest))
	r.Handle("/api/vitals/blood-pressure", h.BloodPressure)
	// /api/vitals/{metric}[/history]
	r.Handle("/api/vitals/", h.Dispatch)
	r.Handle("/api/nutrition", h.Nutrition)
	r.Handle("/api/nutrition/", h.NutritionItem)
	r.Handle("/api/bathroom-events", h.BathroomEvents)
	r.Handle("/api/bathroom-events/", h.BathroomEventItem)
}

func (r *Router) RegisterAdminRoutes(h *AdminHandler) {
	r.Handle("/api/patients", h.Patients)
	r.Handle("/api/patients/", h.PatientItem)
	r.Handle("/api/categories", h.Categories)
	r.Handle("/api/categories/", h.CategoryItem)
}

func (r *Router) RegisterSettingsRoutes(h *SettingsHandler) {
	r.Handle("/api/mqtt/settings", h.MQTTSettings)
	r.Handle("/api/alarms/wiring", h.Wiring)
	r.Handle("/api/alarms/wiring/", h.WiringItem)
	r.Handle("/api/alarms/recent", methodOnly(http.MethodGet, h.RecentAlarms))
}
