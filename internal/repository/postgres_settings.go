package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresSettingsRepo implements SettingsRepository on PostgreSQL.
// mqtt_settings is a single-row table keyed by id=1.
type PostgresSettingsRepo struct {
	db *sql.DB
}

func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

func (r *PostgresSettingsRepo) GetMQTTSettings(ctx context.Context) (*domain.MQTTSettings, error) {
	query := `
		SELECT enabled, broker, client_id, username, password, base_topic,
		       discovery_prefix, node_id, qos, updated_at
		FROM mqtt_settings WHERE id = 1`
	var s domain.MQTTSettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.Enabled, &s.Broker, &s.ClientID, &s.Username, &s.Password,
		&s.BaseTopic, &s.DiscoveryPrefix, &s.NodeID, &s.QoS, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mqtt settings: %w", err)
	}
	return &s, nil
}

func (r *PostgresSettingsRepo) SaveMQTTSettings(ctx context.Context, s *domain.MQTTSettings) error {
	query := `
		INSERT INTO mqtt_settings (id, enabled, broker, client_id, username, password,
		                           base_topic, discovery_prefix, node_id, qos, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id)
		DO UPDATE SET enabled = EXCLUDED.enabled,
		              broker = EXCLUDED.broker,
		              client_id = EXCLUDED.client_id,
		              username = EXCLUDED.username,
		              password = EXCLUDED.password,
		              base_topic = EXCLUDED.base_topic,
		              discovery_prefix = EXCLUDED.discovery_prefix,
		              node_id = EXCLUDED.node_id,
		              qos = EXCLUDED.qos,
		              updated_at = now()`
	_, err := r.db.ExecContext(ctx, query,
		s.Enabled, s.Broker, s.ClientID, s.Username, s.Password,
		s.BaseTopic, s.DiscoveryPrefix, s.NodeID, s.QoS,
	)
	if err != nil {
		return fmt.Errorf("failed to save mqtt settings: %w", err)
	}
	return nil
}

const wiringColumns = `wiring_id, name, pin, metric, min_value, max_value,
	active_high, topic, enabled, created_at, updated_at`

func scanWiring(row interface{ Scan(...any) error }) (*domain.AlarmWiring, error) {
	var w domain.AlarmWiring
	err := row.Scan(
		&w.WiringID, &w.Name, &w.Pin, &w.Metric, &w.MinValue, &w.MaxValue,
		&w.ActiveHigh, &w.Topic, &w.Enabled, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresSettingsRepo) ListAlarmWiring(ctx context.Context, enabledOnly bool) ([]*domain.AlarmWiring, error) {
	query := `SELECT ` + wiringColumns + ` FROM alarm_wiring`
	if enabledOnly {
		query += ` WHERE enabled = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarm wiring: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlarmWiring
	for rows.Next() {
		w, err := scanWiring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alarm wiring: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresSettingsRepo) GetAlarmWiring(ctx context.Context, wiringID string) (*domain.AlarmWiring, error) {
	w, err := scanWiring(r.db.QueryRowContext(ctx,
		`SELECT `+wiringColumns+` FROM alarm_wiring WHERE wiring_id = $1`, wiringID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get alarm wiring: %w", err)
	}
	return w, nil
}

func (r *PostgresSettingsRepo) CreateAlarmWiring(ctx context.Context, w *domain.AlarmWiring) (string, error) {
	query := `
		INSERT INTO alarm_wiring (name, pin, metric, min_value, max_value, active_high, topic, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING wiring_id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		w.Name, w.Pin, w.Metric, w.MinValue, w.MaxValue, w.ActiveHigh, w.Topic, w.Enabled,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create alarm wiring: %w", err)
	}
	return id, nil
}

func (r *PostgresSettingsRepo) UpdateAlarmWiring(ctx context.Context, wiringID string, w *domain.AlarmWiring) error {
	query := `
		UPDATE alarm_wiring
		SET name = $1, pin = $2, metric = $3, min_value = $4, max_value = $5,
		    active_high = $6, topic = $7, enabled = $8, updated_at = now()
		WHERE wiring_id = $9`
	res, err := r.db.ExecContext(ctx, query,
		w.Name, w.Pin, w.Metric, w.MinValue, w.MaxValue, w.ActiveHigh, w.Topic, w.Enabled, wiringID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alarm wiring: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSettingsRepo) DeleteAlarmWiring(ctx context.Context, wiringID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alarm_wiring WHERE wiring_id = $1`, wiringID)
	if err != nil {
		return fmt.Errorf("failed to delete alarm wiring: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSettingsRepo) InsertAlarmEvent(ctx context.Context, e *domain.AlarmEvent) (string, error) {
	query := `
		INSERT INTO alarm_events (wiring_id, metric, value, message, triggered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING event_id`
	var id string
	err := r.db.QueryRowContext(ctx, query, e.WiringID, e.Metric, e.Value, e.Message, e.TriggeredAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert alarm event: %w", err)
	}
	return id, nil
}

func (r *PostgresSettingsRepo) ListRecentAlarmEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT event_id, wiring_id, metric, value, message, triggered_at
		FROM alarm_events
		ORDER BY triggered_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarm events: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlarmEvent
	for rows.Next() {
		var e domain.AlarmEvent
		if err := rows.Scan(&e.EventID, &e.WiringID, &e.Metric, &e.Value, &e.Message, &e.TriggeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan alarm event: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
