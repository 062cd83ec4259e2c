package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MemorySettingsRepo is the no-DB fallback for MQTT settings, alarm
// wiring and alarm events.
type MemorySettingsRepo struct {
	mu       sync.RWMutex
	settings *domain.MQTTSettings
	wiring   map[string]domain.AlarmWiring
	events   []domain.AlarmEvent
}

func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{wiring: map[string]domain.AlarmWiring{}}
}

func (r *MemorySettingsRepo) GetMQTTSettings(_ context.Context) (*domain.MQTTSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, ErrNotFound
	}
	s := *r.settings
	return &s, nil
}

func (r *MemorySettingsRepo) SaveMQTTSettings(_ context.Context, s *domain.MQTTSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	stored.UpdatedAt = time.Now()
	r.settings = &stored
	return nil
}

func (r *MemorySettingsRepo) ListAlarmWiring(_ context.Context, enabledOnly bool) ([]*domain.AlarmWiring, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AlarmWiring
	for id := range r.wiring {
		w := r.wiring[id]
		if enabledOnly && !w.Enabled {
			continue
		}
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemorySettingsRepo) GetAlarmWiring(_ context.Context, wiringID string) (*domain.AlarmWiring, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wiring[wiringID]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (r *MemorySettingsRepo) CreateAlarmWiring(_ context.Context, w *domain.AlarmWiring) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *w
	stored.WiringID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.wiring[id] = stored
	return id, nil
}

func (r *MemorySettingsRepo) UpdateAlarmWiring(_ context.Context, wiringID string, w *domain.AlarmWiring) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.wiring[wiringID]
	if !ok {
		return ErrNotFound
	}
	updated := *w
	updated.WiringID = wiringID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.wiring[wiringID] = updated
	return nil
}

func (r *MemorySettingsRepo) DeleteAlarmWiring(_ context.Context, wiringID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wiring[wiringID]; !ok {
		return ErrNotFound
	}
	delete(r.wiring, wiringID)
	return nil
}

func (r *MemorySettingsRepo) InsertAlarmEvent(_ context.Context, e *domain.AlarmEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *e
	stored.EventID = uuid.NewString()
	r.events = append(r.events, stored)
	return stored.EventID, nil
}

func (r *MemorySettingsRepo) ListRecentAlarmEvents(_ context.Context, limit int) ([]*domain.AlarmEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*domain.AlarmEvent, 0, len(r.events))
	for i := range r.events {
		e := r.events[i]
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
