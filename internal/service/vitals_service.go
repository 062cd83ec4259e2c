package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/store"
	redisutil "github.com/johnrcarty/smart-home-health-hub/pkg/redis"
)

// Plausibility bounds per metric. Readings outside these are rejected as
// entry mistakes, not stored.
var metricBounds = map[string][2]float64{
	domain.MetricSpO2:        {50, 100},
	domain.MetricHeartRate:   {20, 250},
	domain.MetricTemperature: {30, 45}, // celsius
	domain.MetricWeight:      {1, 400}, // kg
}

// VitalsService records vitals, nutrition and bathroom events. Every stored
// reading is mirrored into the latest-value cache and published on the
// vitals stream for the alarm dispatcher.
type VitalsService interface {
	RecordReading(ctx context.Context, req RecordReadingRequest) (string, error)
	ListReadings(ctx context.Context, metric string, from, to time.Time, limit int) ([]*domain.VitalReading, error)
	LatestReadings(ctx context.Context) (map[string]*LatestReading, error)

	RecordBloodPressure(ctx context.Context, req RecordBloodPressureRequest) (string, error)
	ListBloodPressure(ctx context.Context, from, to time.Time, limit int) ([]*domain.BloodPressureReading, error)

	RecordMeal(ctx context.Context, req RecordMealRequest) (string, error)
	ListMealsForDay(ctx context.Context, dayStart time.Time) ([]*domain.MealEntry, error)
	DeleteMeal(ctx context.Context, entryID string) error

	RecordBathroomEvent(ctx context.Context, req RecordBathroomEventRequest) (string, error)
	ListBathroomEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.BathroomEvent, error)
	DeleteBathroomEvent(ctx context.Context, eventID string) error
}

type VitalsStreamConfig struct {
	Stream          string
	LatestKeyPrefix string
	LatestTTL       time.Duration
}

type vitalsService struct {
	vitalsRepo repository.VitalsRepository
	kv         store.KV
	rdb        *goredis.Client // nil when Redis is disabled
	cfg        VitalsStreamConfig
	logger     *zap.Logger
}

func NewVitalsService(
	vitalsRepo repository.VitalsRepository,
	kv store.KV,
	rdb *goredis.Client,
	cfg VitalsStreamConfig,
	logger *zap.Logger,
) VitalsService {
	return &vitalsService{
		vitalsRepo: vitalsRepo,
		kv:         kv,
		rdb:        rdb,
		cfg:        cfg,
		logger:     logger,
	}
}

// ============================================
// Single-value readings
// ============================================

type RecordReadingRequest struct {
	Metric  string
	Value   float64
	Unit    string
	Source  string
	TakenAt *time.Time
}

// LatestReading is the cached most-recent value for one metric.
type LatestReading struct {
	Metric  string    `json:"metric"`
	Value   float64   `json:"value"`
	Unit    string    `json:"unit"`
	Source  string    `json:"source"`
	TakenAt time.Time `json:"taken_at"`
}

func (s *vitalsService) RecordReading(ctx context.Context, req RecordReadingRequest) (string, error) {
	bounds, ok := metricBounds[req.Metric]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", req.Metric)
	}
	if req.Value < bounds[0] || req.Value > bounds[1] {
		return "", fmt.Errorf("%s value %.1f outside plausible range [%g, %g]", req.Metric, req.Value, bounds[0], bounds[1])
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	if source != domain.SourceManual && source != domain.SourceDevice {
		return "", fmt.Errorf("source must be %q or %q", domain.SourceManual, domain.SourceDevice)
	}

	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	reading := &domain.VitalReading{
		Metric:  req.Metric,
		Value:   req.Value,
		Unit:    req.Unit,
		Source:  source,
		TakenAt: takenAt,
	}

	id, err := s.vitalsRepo.InsertReading(ctx, reading)
	if err != nil {
		s.logger.Error("RecordReading failed", zap.String("metric", req.Metric), zap.Error(err))
		return "", fmt.Errorf("failed to record reading")
	}
	reading.ReadingID = id

	s.cacheLatest(ctx, &LatestReading{
		Metric:  reading.Metric,
		Value:   reading.Value,
		Unit:    reading.Unit,
		Source:  reading.Source,
		TakenAt: reading.TakenAt,
	})
	s.publishReading(ctx, reading)

	s.logger.Info("Vital reading recorded",
		zap.String("reading_id", id),
		zap.String("metric", reading.Metric),
		zap.Float64("value", reading.Value),
		zap.String("source", reading.Source),
	)
	return id, nil
}

// cacheLatest overwrites the per-metric latest-value key. Cache failures are
// logged, never surfaced; the database row is the record.
func (s *vitalsService) cacheLatest(ctx context.Context, latest *LatestReading) {
	if s.kv == nil {
		return
	}
	payload, err := json.Marshal(latest)
	if err != nil {
		return
	}
	key := s.cfg.LatestKeyPrefix + latest.Metric
	if err := s.kv.Set(ctx, key, string(payload), s.cfg.LatestTTL); err != nil {
		s.logger.Warn("Caching latest reading failed", zap.String("key", key), zap.Error(err))
	}
}

// publishReading pushes the stored reading onto the vitals stream so the
// alarm dispatcher can evaluate it.
func (s *vitalsService) publishReading(ctx context.Context, reading *domain.VitalReading) {
	if s.rdb == nil || s.cfg.Stream == "" {
		return
	}
	if _, err := redisutil.PublishJSONToStream(ctx, s.rdb, s.cfg.Stream, reading.ToJSON()); err != nil {
		s.logger.Warn("Publishing reading to stream failed",
			zap.String("stream", s.cfg.Stream),
			zap.String("metric", reading.Metric),
			zap.Error(err),
		)
	}
}

func (s *vitalsService) ListReadings(ctx context.Context, metric string, from, to time.Time, limit int) ([]*domain.VitalReading, error) {
	if _, ok := metricBounds[metric]; !ok {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	return s.vitalsRepo.ListReadings(ctx, metric, from, to, limit)
}

// LatestReadings returns the cached most-recent value per metric. Metrics
// with no cached value (expired or never recorded) are absent from the map.
func (s *vitalsService) LatestReadings(ctx context.Context) (map[string]*LatestReading, error) {
	out := make(map[string]*LatestReading)
	if s.kv == nil {
		return out, nil
	}
	for metric := range metricBounds {
		raw, err := s.kv.Get(ctx, s.cfg.LatestKeyPrefix+metric)
		if err != nil {
			if err == store.ErrMiss {
				continue
			}
			return nil, fmt.Errorf("failed to read latest vitals")
		}
		var latest LatestReading
		if err := json.Unmarshal([]byte(raw), &latest); err != nil {
			s.logger.Warn("Corrupt latest-reading cache entry", zap.String("metric", metric), zap.Error(err))
			continue
		}
		out[metric] = &latest
	}
	return out, nil
}

// ============================================
// Blood pressure
// ============================================

type RecordBloodPressureRequest struct {
	Systolic  int
	Diastolic int
	Pulse     int // 0 means not measured
	Source    string
	TakenAt   *time.Time
}

func (s *vitalsService) RecordBloodPressure(ctx context.Context, req RecordBloodPressureRequest) (string, error) {
	if req.Systolic < 50 || req.Systolic > 300 {
		return "", fmt.Errorf("systolic %d outside plausible range [50, 300]", req.Systolic)
	}
	if req.Diastolic < 30 || req.Diastolic > 200 {
		return "", fmt.Errorf("diastolic %d outside plausible range [30, 200]", req.Diastolic)
	}
	if req.Diastolic >= req.Systolic {
		return "", fmt.Errorf("diastolic must be below systolic")
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	reading := &domain.BloodPressureReading{
		Systolic:  req.Systolic,
		Diastolic: req.Diastolic,
		Source:    source,
		TakenAt:   takenAt,
	}
	if req.Pulse > 0 {
		reading.Pulse = sql.NullInt64{Int64: int64(req.Pulse), Valid: true}
	}

	id, err := s.vitalsRepo.InsertBloodPressure(ctx, reading)
	if err != nil {
		s.logger.Error("RecordBloodPressure failed", zap.Error(err))
		return "", fmt.Errorf("failed to record blood pressure")
	}

	s.logger.Info("Blood pressure recorded",
		zap.String("reading_id", id),
		zap.Int("systolic", req.Systolic),
		zap.Int("diastolic", req.Diastolic),
		zap.Float64("map", reading.MAP()),
	)
	return id, nil
}

func (s *vitalsService) ListBloodPressure(ctx context.Context, from, to time.Time, limit int) ([]*domain.BloodPressureReading, error) {
	return s.vitalsRepo.ListBloodPressure(ctx, from, to, limit)
}

// ============================================
// Nutrition
// ============================================

var mealTypes = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}

type RecordMealRequest struct {
	MealType    string
	Description string
	Calories    int
	Amount      string
	EatenAt     *time.Time
}

func (s *vitalsService) RecordMeal(ctx context.Context, req RecordMealRequest) (string, error) {
	if !mealTypes[req.MealType] {
		return "", fmt.Errorf("meal_type must be breakfast, lunch, dinner or snack")
	}
	if strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("description is required")
	}

	eatenAt := time.Now()
	if req.EatenAt != nil {
		eatenAt = *req.EatenAt
	}

	entry := &domain.MealEntry{
		MealType:    req.MealType,
		Description: strings.TrimSpace(req.Description),
		EatenAt:     eatenAt,
	}
	if req.Calories > 0 {
		entry.Calories = sql.NullInt64{Int64: int64(req.Calories), Valid: true}
	}
	if req.Amount != "" {
		entry.Amount = sql.NullString{String: req.Amount, Valid: true}
	}

	id, err := s.vitalsRepo.InsertMeal(ctx, entry)
	if err != nil {
		s.logger.Error("RecordMeal failed", zap.Error(err))
		return "", fmt.Errorf("failed to record meal")
	}
	return id, nil
}

func (s *vitalsService) ListMealsForDay(ctx context.Context, dayStart time.Time) ([]*domain.MealEntry, error) {
	return s.vitalsRepo.ListMealsForDay(ctx, dayStart)
}

func (s *vitalsService) DeleteMeal(ctx context.Context, entryID string) error {
	if entryID == "" {
		return fmt.Errorf("entry_id is required")
	}
	return s.vitalsRepo.DeleteMeal(ctx, entryID)
}

// ============================================
// Bathroom events
// ============================================

var bathroomEventTypes = map[string]bool{"urine": true, "stool": true, "both": true}

type RecordBathroomEventRequest struct {
	EventType  string
	Notes      string
	OccurredAt *time.Time
}

func (s *vitalsService) RecordBathroomEvent(ctx context.Context, req RecordBathroomEventRequest) (string, error) {
	if !bathroomEventTypes[req.EventType] {
		return "", fmt.Errorf("event_type must be urine, stool or both")
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	event := &domain.BathroomEvent{
		EventType:  req.EventType,
		OccurredAt: occurredAt,
	}
	if req.Notes != "" {
		event.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	id, err := s.vitalsRepo.InsertBathroomEvent(ctx, event)
	if err != nil {
		s.logger.Error("RecordBathroomEvent failed", zap.Error(err))
		return "", fmt.Errorf("failed to record bathroom event")
	}
	return id, nil
}

func (s *vitalsService) ListBathroomEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.BathroomEvent, error) {
	return s.vitalsRepo.ListBathroomEventsForDay(ctx, dayStart)
}

func (s *vitalsService) DeleteBathroomEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event_id is required")
	}
	return s.vitalsRepo.DeleteBathroomEvent(ctx, eventID)
}
