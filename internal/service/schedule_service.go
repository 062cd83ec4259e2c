package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/schedule"
)

// ScheduleService serves the daily schedule view and manages recurring
// schedules. Status derivation, grouping and filtering all go through the
// schedule package; handlers never re-implement any of it.
type ScheduleService interface {
	DailySchedule(ctx context.Context, req DailyScheduleRequest) (*DailyScheduleResponse, error)

	ListSchedules(ctx context.Context, activeOnly bool) ([]*domain.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	CreateSchedule(ctx context.Context, req SaveScheduleRequest) (string, error)
	UpdateSchedule(ctx context.Context, scheduleID string, req SaveScheduleRequest) error
	DeleteSchedule(ctx context.Context, scheduleID string) error
	PreviewSchedule(ctx context.Context, req PreviewScheduleRequest) (*PreviewScheduleResponse, error)

	MaterializeDay(ctx context.Context, day time.Time) (*MaterializeDayResponse, error)
}

type scheduleService struct {
	medsRepo      repository.MedicationsRepository
	tasksRepo     repository.CareTasksRepository
	schedulesRepo repository.SchedulesRepository
	logger        *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewScheduleService(
	medsRepo repository.MedicationsRepository,
	tasksRepo repository.CareTasksRepository,
	schedulesRepo repository.SchedulesRepository,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		medsRepo:      medsRepo,
		tasksRepo:     tasksRepo,
		schedulesRepo: schedulesRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ============================================
// Daily schedule
// ============================================

type DailyScheduleRequest struct {
	Day      time.Time // any instant in the requested day
	Timezone string    // IANA name, default Local
	// StatusOverrides flips individual statuses on/off relative to the
	// default filter, e.g. {"on_time": true} to show completed doses.
	StatusOverrides map[string]bool
}

type DailyScheduleResponse struct {
	Days   []schedule.DayGroup      `json:"days"`
	Counts map[schedule.Status]int  `json:"counts"`
	Total  int                      `json:"total"`
	Filter map[schedule.Status]bool `json:"filter"`
}

func (s *scheduleService) DailySchedule(ctx context.Context, req DailyScheduleRequest) (*DailyScheduleResponse, error) {
	loc := time.Local
	if req.Timezone != "" {
		l, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q", req.Timezone)
		}
		loc = l
	}

	day := req.Day
	if day.IsZero() {
		day = s.now()
	}
	dayStart := time.Date(day.In(loc).Year(), day.In(loc).Month(), day.In(loc).Day(), 0, 0, 0, 0, loc)

	items, err := s.assembleDay(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	counts := schedule.ClassifyAll(items, s.now())

	filter := schedule.DefaultStatusFilter().Merge(req.StatusOverrides)
	visible := filter.Apply(items)

	return &DailyScheduleResponse{
		Days:   schedule.GroupByDay(visible, loc),
		Counts: counts,
		Total:  len(items),
		Filter: filter,
	}, nil
}

// assembleDay flattens the day's dose events and care tasks into scheduled
// items. Medication names come from a single list fetch, not N lookups.
func (s *scheduleService) assembleDay(ctx context.Context, dayStart time.Time) ([]domain.ScheduledItem, error) {
	doses, err := s.medsRepo.ListDoseEventsForDay(ctx, dayStart)
	if err != nil {
		s.logger.Error("assembleDay: listing dose events failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load dose events")
	}

	meds, err := s.medsRepo.ListMedications(ctx, false)
	if err != nil {
		s.logger.Error("assembleDay: listing medications failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load medications")
	}
	medsByID := make(map[string]*domain.Medication, len(meds))
	for _, m := range meds {
		medsByID[m.MedicationID] = m
	}

	tasks, err := s.tasksRepo.ListCareTasksForDay(ctx, dayStart)
	if err != nil {
		s.logger.Error("assembleDay: listing care tasks failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load care tasks")
	}

	items := make([]domain.ScheduledItem, 0, len(doses)+len(tasks))
	for _, d := range doses {
		items = append(items, doseToItem(d, medsByID[d.MedicationID]))
	}
	for _, t := range tasks {
		items = append(items, taskToItem(t))
	}
	return items, nil
}

func doseToItem(d *domain.DoseEvent, med *domain.Medication) domain.ScheduledItem {
	item := domain.ScheduledItem{
		ID:          d.DoseID,
		Kind:        domain.ScheduledKindMedication,
		Name:        "(unknown medication)",
		IsCompleted: d.Completed(),
	}
	if med != nil {
		item.Name = med.Name
		item.DoseAmount = fmt.Sprintf("%g x %s %s", d.DoseAmount, med.Dosage, med.Unit)
		if med.Instructions.Valid {
			item.Description = med.Instructions.String
		}
	}
	st := d.ScheduledTime
	item.ScheduledTime = &st
	if d.ActualDose.Valid {
		v := d.ActualDose.Float64
		item.ActualDose = &v
	}
	if d.ActualTime.Valid {
		at := d.ActualTime.Time
		item.ActualTime = &at
	}
	return item
}

func taskToItem(t *domain.CareTask) domain.ScheduledItem {
	item := domain.ScheduledItem{
		ID:          t.TaskID,
		Kind:        domain.ScheduledKindCareTask,
		Name:        t.Title,
		IsCompleted: t.Completed(),
	}
	if t.Description.Valid {
		item.Description = t.Description.String
	}
	if t.ScheduledTime.Valid {
		st := t.ScheduledTime.Time
		item.ScheduledTime = &st
	}
	if t.CompletedAt.Valid {
		at := t.CompletedAt.Time
		item.ActualTime = &at
		done := 1.0
		if t.Skipped {
			done = 0
		}
		item.ActualDose = &done
	} else if t.Skipped {
		zero := 0.0
		item.ActualDose = &zero
	}
	return item
}

// ============================================
// Schedule CRUD
// ============================================

func (s *scheduleService) ListSchedules(ctx context.Context, activeOnly bool) ([]*domain.Schedule, error) {
	return s.schedulesRepo.ListSchedules(ctx, activeOnly)
}

func (s *scheduleService) GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("schedule_id is required")
	}
	return s.schedulesRepo.GetSchedule(ctx, scheduleID)
}

type SaveScheduleRequest struct {
	Name       string
	CronExpr   string
	TargetType string
	TargetID   string
	DoseAmount float64
	Timezone   string
	Active     bool
}

func (req *SaveScheduleRequest) validate() (*domain.Schedule, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := schedule.ValidateCron(req.CronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	if req.TargetType != domain.ScheduleTargetMedication && req.TargetType != domain.ScheduleTargetCareTask {
		return nil, fmt.Errorf("target_type must be %q or %q", domain.ScheduleTargetMedication, domain.ScheduleTargetCareTask)
	}
	tz := req.Timezone
	if tz == "" {
		tz = "Local"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid timezone %q", req.Timezone)
	}

	sch := &domain.Schedule{
		Name:       strings.TrimSpace(req.Name),
		CronExpr:   req.CronExpr,
		TargetType: req.TargetType,
		Timezone:   tz,
		Active:     req.Active,
	}
	if req.TargetID != "" {
		sch.TargetID = sql.NullString{String: req.TargetID, Valid: true}
	}
	if req.DoseAmount > 0 {
		sch.DoseAmount = sql.NullFloat64{Float64: req.DoseAmount, Valid: true}
	}
	return sch, nil
}

func (s *scheduleService) CreateSchedule(ctx context.Context, req SaveScheduleRequest) (string, error) {
	sch, err := req.validate()
	if err != nil {
		return "", err
	}
	id, err := s.schedulesRepo.CreateSchedule(ctx, sch)
	if err != nil {
		s.logger.Error("CreateSchedule failed", zap.String("name", req.Name), zap.Error(err))
		return "", fmt.Errorf("failed to create schedule")
	}
	s.logger.Info("Schedule created",
		zap.String("schedule_id", id),
		zap.String("cron", req.CronExpr),
		zap.String("target_type", req.TargetType),
	)
	return id, nil
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, scheduleID string, req SaveScheduleRequest) error {
	if scheduleID == "" {
		return fmt.Errorf("schedule_id is required")
	}
	sch, err := req.validate()
	if err != nil {
		return err
	}
	if err := s.schedulesRepo.UpdateSchedule(ctx, scheduleID, sch); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdateSchedule failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		return fmt.Errorf("failed to update schedule")
	}
	return nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return fmt.Errorf("schedule_id is required")
	}
	if err := s.schedulesRepo.DeleteSchedule(ctx, scheduleID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeleteSchedule failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		return fmt.Errorf("failed to delete schedule")
	}
	return nil
}

type PreviewScheduleRequest struct {
	CronExpr string
	Timezone string
	Count    int // number of upcoming runs, default 5
}

type PreviewScheduleResponse struct {
	Description string      `json:"description"`
	NextRuns    []time.Time `json:"next_runs"`
}

// PreviewSchedule renders a human-readable description of a cron expression
// plus its next few firings, for the schedule form.
func (s *scheduleService) PreviewSchedule(_ context.Context, req PreviewScheduleRequest) (*PreviewScheduleResponse, error) {
	desc, err := schedule.DescribeCron(req.CronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	loc := time.Local
	if req.Timezone != "" {
		l, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q", req.Timezone)
		}
		loc = l
	}

	count := req.Count
	if count <= 0 {
		count = 5
	}

	runs := make([]time.Time, 0, count)
	after := s.now()
	for i := 0; i < count; i++ {
		next, err := schedule.NextRun(req.CronExpr, after, loc)
		if err != nil {
			return nil, err
		}
		runs = append(runs, next)
		after = next
	}
	return &PreviewScheduleResponse{Description: desc, NextRuns: runs}, nil
}

// ============================================
// Materialization
// ============================================

type MaterializeDayResponse struct {
	DosesCreated int `json:"doses_created"`
	TasksCreated int `json:"tasks_created"`
}

// MaterializeDay expands every active schedule into concrete dose events and
// care tasks for the given day. Occurrences that already exist (same target,
// same minute) are left alone, so the generator is safe to re-run.
func (s *scheduleService) MaterializeDay(ctx context.Context, day time.Time) (*MaterializeDayResponse, error) {
	schedules, err := s.schedulesRepo.ListSchedules(ctx, true)
	if err != nil {
		s.logger.Error("MaterializeDay: listing schedules failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load schedules")
	}

	resp := &MaterializeDayResponse{}
	for _, sch := range schedules {
		loc, err := time.LoadLocation(sch.Timezone)
		if err != nil {
			s.logger.Warn("MaterializeDay: bad timezone on schedule, using Local",
				zap.String("schedule_id", sch.ScheduleID),
				zap.String("timezone", sch.Timezone),
			)
			loc = time.Local
		}

		dayStart := time.Date(day.In(loc).Year(), day.In(loc).Month(), day.In(loc).Day(), 0, 0, 0, 0, loc)
		occurrences, err := schedule.Occurrences(sch.CronExpr, dayStart, dayStart.Add(24*time.Hour), loc)
		if err != nil {
			s.logger.Warn("MaterializeDay: skipping schedule with bad cron",
				zap.String("schedule_id", sch.ScheduleID),
				zap.String("cron", sch.CronExpr),
				zap.Error(err),
			)
			continue
		}
		if len(occurrences) == 0 {
			continue
		}

		switch sch.TargetType {
		case domain.ScheduleTargetMedication:
			n, err := s.materializeDoses(ctx, sch, dayStart, occurrences)
			if err != nil {
				return nil, err
			}
			resp.DosesCreated += n
		case domain.ScheduleTargetCareTask:
			n, err := s.materializeTasks(ctx, sch, dayStart, occurrences)
			if err != nil {
				return nil, err
			}
			resp.TasksCreated += n
		}
	}

	s.logger.Info("Day materialized",
		zap.Time("day", day),
		zap.Int("doses_created", resp.DosesCreated),
		zap.Int("tasks_created", resp.TasksCreated),
	)
	return resp, nil
}

// occurrenceKey identifies one scheduled slot for dedup. Times are
// normalized to UTC first: the repos hand back timestamptz values in the
// session zone while occurrences are computed in the schedule's zone, and
// the same instant must key identically from both sides.
func occurrenceKey(id string, at time.Time) string {
	return id + "|" + at.UTC().Truncate(time.Minute).Format(time.RFC3339)
}

func (s *scheduleService) materializeDoses(ctx context.Context, sch *domain.Schedule, dayStart time.Time, occurrences []time.Time) (int, error) {
	if !sch.TargetID.Valid {
		s.logger.Warn("MaterializeDay: medication schedule with no target", zap.String("schedule_id", sch.ScheduleID))
		return 0, nil
	}

	existing, err := s.medsRepo.ListDoseEventsForDay(ctx, dayStart)
	if err != nil {
		return 0, fmt.Errorf("failed to load dose events")
	}
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[occurrenceKey(d.MedicationID, d.ScheduledTime)] = true
	}

	amount := 1.0
	if sch.DoseAmount.Valid {
		amount = sch.DoseAmount.Float64
	}

	created := 0
	for _, at := range occurrences {
		if seen[occurrenceKey(sch.TargetID.String, at)] {
			continue
		}
		_, err := s.medsRepo.CreateDoseEvent(ctx, &domain.DoseEvent{
			MedicationID:  sch.TargetID.String,
			ScheduledTime: at,
			DoseAmount:    amount,
		})
		if err != nil {
			return created, fmt.Errorf("failed to create dose event")
		}
		created++
	}
	return created, nil
}

func (s *scheduleService) materializeTasks(ctx context.Context, sch *domain.Schedule, dayStart time.Time, occurrences []time.Time) (int, error) {
	existing, err := s.tasksRepo.ListCareTasksForDay(ctx, dayStart)
	if err != nil {
		return 0, fmt.Errorf("failed to load care tasks")
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		if !t.ScheduleID.Valid || !t.ScheduledTime.Valid {
			continue
		}
		seen[occurrenceKey(t.ScheduleID.String, t.ScheduledTime.Time)] = true
	}

	created := 0
	for _, at := range occurrences {
		if seen[occurrenceKey(sch.ScheduleID, at)] {
			continue
		}
		_, err := s.tasksRepo.CreateCareTask(ctx, &domain.CareTask{
			Title:         sch.Name,
			ScheduleID:    sql.NullString{String: sch.ScheduleID, Valid: true},
			ScheduledTime: sql.NullTime{Time: at, Valid: true},
		})
		if err != nil {
			return created, fmt.Errorf("failed to create care task")
		}
		created++
	}
	return created, nil
}
