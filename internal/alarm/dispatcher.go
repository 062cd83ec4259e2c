package alarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
	redisutil "github.com/johnrcarty/smart-home-health-hub/pkg/redis"
)

// Publisher pushes a triggered alarm out to the hardware side. The MQTT
// bridge implements it; a nil publisher means alarms are only recorded.
type Publisher interface {
	PublishAlarm(alarm *service.TriggeredAlarm) error
}

type Config struct {
	Stream    string
	Group     string
	Consumer  string
	BatchSize int64
}

// Dispatcher consumes vital readings off the Redis stream and runs them
// through the alarm service. Triggered alarms go out via the publisher.
type Dispatcher struct {
	rdb          *goredis.Client
	cfg          Config
	alarmService service.AlarmService
	publisher    Publisher
	logger       *zap.Logger
}

func NewDispatcher(rdb *goredis.Client, cfg Config, alarmService service.AlarmService, publisher Publisher, logger *zap.Logger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	return &Dispatcher{
		rdb:          rdb,
		cfg:          cfg,
		alarmService: alarmService,
		publisher:    publisher,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, processing readings as they arrive.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := redisutil.CreateConsumerGroup(ctx, d.rdb, d.cfg.Stream, d.cfg.Group); err != nil {
		return err
	}

	d.logger.Info("Alarm dispatcher started",
		zap.String("stream", d.cfg.Stream),
		zap.String("group", d.cfg.Group),
		zap.String("consumer", d.cfg.Consumer),
	)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Alarm dispatcher stopping")
			return ctx.Err()
		default:
		}

		messages, err := redisutil.ReadFromStream(ctx, d.rdb, d.cfg.Stream, d.cfg.Group, d.cfg.Consumer, d.cfg.BatchSize, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("Reading vitals stream failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			if err := d.process(ctx, msg); err != nil {
				// Leave the entry unacked so another pass can retry it.
				d.logger.Error("Processing stream entry failed",
					zap.String("id", msg.ID),
					zap.Error(err),
				)
				continue
			}
			if err := redisutil.AckMessage(ctx, d.rdb, d.cfg.Stream, d.cfg.Group, msg.ID); err != nil {
				d.logger.Warn("Acking stream entry failed", zap.String("id", msg.ID), zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, msg redisutil.StreamMessage) error {
	reading, err := decodeReading(msg)
	if err != nil {
		// A malformed entry will never parse; ack it away rather than
		// poisoning the group.
		d.logger.Warn("Dropping malformed stream entry", zap.String("id", msg.ID), zap.Error(err))
		return redisutil.AckMessage(ctx, d.rdb, d.cfg.Stream, d.cfg.Group, msg.ID)
	}

	triggered, err := d.alarmService.Evaluate(ctx, reading)
	if err != nil {
		return err
	}

	for _, alarm := range triggered {
		if d.publisher == nil {
			continue
		}
		if err := d.publisher.PublishAlarm(alarm); err != nil {
			d.logger.Warn("Publishing alarm failed",
				zap.String("event_id", alarm.Event.EventID),
				zap.String("topic", alarm.Wiring.Topic),
				zap.Error(err),
			)
		}
	}
	return nil
}

// streamReading mirrors VitalReading.ToJSON, which is what the vitals
// service publishes.
type streamReading struct {
	ReadingID string    `json:"reading_id"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Source    string    `json:"source"`
	TakenAt   time.Time `json:"taken_at"`
}

func decodeReading(msg redisutil.StreamMessage) (*domain.VitalReading, error) {
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("stream entry has no data field")
	}
	var sr streamReading
	if err := json.Unmarshal([]byte(raw), &sr); err != nil {
		return nil, fmt.Errorf("bad reading JSON: %w", err)
	}
	if sr.Metric == "" {
		return nil, fmt.Errorf("reading has no metric")
	}
	return &domain.VitalReading{
		ReadingID: sr.ReadingID,
		Metric:    sr.Metric,
		Value:     sr.Value,
		Unit:      sr.Unit,
		Source:    sr.Source,
		TakenAt:   sr.TakenAt,
	}, nil
}
