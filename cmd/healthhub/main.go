package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/alarm"
	"github.com/johnrcarty/smart-home-health-hub/internal/config"
	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	httpapi "github.com/johnrcarty/smart-home-health-hub/internal/http"
	"github.com/johnrcarty/smart-home-health-hub/internal/mqtt"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
	"github.com/johnrcarty/smart-home-health-hub/internal/store"
	"github.com/johnrcarty/smart-home-health-hub/pkg/database"
	"github.com/johnrcarty/smart-home-health-hub/pkg/logger"
	redisutil "github.com/johnrcarty/smart-home-health-hub/pkg/redis"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "healthhub")
	if err != nil {
		log, _ = logger.NewWithDefaults()
	}
	defer log.Sync()

	redisClient := redisutil.NewClient(&redisutil.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisutil.Ping(context.Background(), redisClient); err != nil {
		log.Warn("Redis unreachable, latest-readings cache and alarms degraded", zap.Error(err))
	}
	kv := store.NewRedisKV(redisClient)

	// Repositories: Postgres when available, in-memory fallback so the
	// dashboard still comes up on a bare dev box.
	var (
		db            *sql.DB
		medsRepo      repository.MedicationsRepository
		tasksRepo     repository.CareTasksRepository
		schedulesRepo repository.SchedulesRepository
		vitalsRepo    repository.VitalsRepository
		patientsRepo  repository.PatientsRepository
		catsRepo      repository.CategoriesRepository
		settingsRepo  repository.SettingsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for healthhub")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		medsRepo = repository.NewPostgresMedicationsRepo(db)
		tasksRepo = repository.NewPostgresCareTasksRepo(db)
		schedulesRepo = repository.NewPostgresSchedulesRepo(db)
		vitalsRepo = repository.NewPostgresVitalsRepo(db)
		patientsRepo = repository.NewPostgresPatientsRepo(db)
		catsRepo = repository.NewPostgresCategoriesRepo(db)
		settingsRepo = repository.NewPostgresSettingsRepo(db)
	} else {
		medsRepo = repository.NewMemoryMedicationsRepo()
		tasksRepo = repository.NewMemoryCareTasksRepo()
		schedulesRepo = repository.NewMemorySchedulesRepo()
		vitalsRepo = repository.NewMemoryVitalsRepo()
		patientsRepo = repository.NewMemoryPatientsRepo()
		catsRepo = repository.NewMemoryCategoriesRepo()
		settingsRepo = repository.NewMemorySettingsRepo()
	}

	vitalsService := service.NewVitalsService(vitalsRepo, kv, redisClient, service.VitalsStreamConfig{
		Stream:          cfg.Vitals.Stream,
		LatestKeyPrefix: cfg.Vitals.LatestKeyPrefix,
		LatestTTL:       time.Duration(cfg.Vitals.LatestTTL) * time.Second,
	}, log)
	medicationService := service.NewMedicationService(medsRepo, log)
	careTaskService := service.NewCareTaskService(tasksRepo, log)
	scheduleService := service.NewScheduleService(medsRepo, tasksRepo, schedulesRepo, log)
	adminService := service.NewAdminService(patientsRepo, catsRepo, log)
	alarmService := service.NewAlarmService(settingsRepo, kv,
		time.Duration(cfg.Alarm.CooldownSecs)*time.Second, log)

	bridge := mqtt.NewBridge(vitalsService, log)
	settingsService := service.NewSettingsService(settingsRepo, log, bridge.Restart)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterMedicationRoutes(httpapi.NewMedicationHandler(medicationService, log))
	router.RegisterScheduleRoutes(httpapi.NewScheduleHandler(scheduleService, log))
	router.RegisterCareTaskRoutes(httpapi.NewCareTaskHandler(careTaskService, log))
	router.RegisterVitalsRoutes(httpapi.NewVitalsHandler(vitalsService, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(adminService, log))
	router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(settingsService, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bring the MQTT bridge up from saved settings; process env provides
	// the bootstrap values when nothing has been saved yet.
	mqttSettings, err := settingsService.GetMQTTSettings(ctx)
	if err != nil {
		log.Error("Loading MQTT settings failed", zap.Error(err))
	} else {
		if !mqttSettings.Enabled && cfg.MQTT.Enabled {
			mqttSettings = &domain.MQTTSettings{
				Enabled:         true,
				Broker:          cfg.MQTT.Broker,
				ClientID:        cfg.MQTT.ClientID,
				Username:        cfg.MQTT.Username,
				Password:        cfg.MQTT.Password,
				BaseTopic:       cfg.MQTT.BaseTopic,
				DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
				NodeID:          cfg.MQTT.NodeID,
				QoS:             int(cfg.MQTT.QoS),
			}
		}
		if err := bridge.Start(mqttSettings); err != nil {
			log.Error("MQTT bridge start failed", zap.Error(err))
		}
	}

	if cfg.Alarm.Enabled {
		dispatcher := alarm.NewDispatcher(redisClient, alarm.Config{
			Stream:    cfg.Vitals.Stream,
			Group:     cfg.Alarm.ConsumerGroup,
			Consumer:  cfg.Alarm.Consumer,
			BatchSize: int64(cfg.Alarm.BatchSize),
		}, alarmService, bridge, log)
		go func() {
			if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("Alarm dispatcher exited", zap.Error(err))
			}
		}()
	}

	// Nightly materialization keeps tomorrow's dose events and care tasks
	// in place even when nobody opens the dashboard overnight.
	runner := cron.New()
	_, err = runner.AddFunc("5 0 * * *", func() {
		mctx, mcancel := context.WithTimeout(ctx, time.Minute)
		defer mcancel()
		if resp, err := scheduleService.MaterializeDay(mctx, time.Now()); err != nil {
			log.Error("Nightly materialization failed", zap.Error(err))
		} else {
			log.Info("Nightly materialization done",
				zap.Int("doses", resp.DosesCreated),
				zap.Int("tasks", resp.TasksCreated))
		}
	})
	if err != nil {
		log.Error("Registering materialization job failed", zap.Error(err))
	}
	runner.Start()

	// Catch up today's slots on boot so a restart mid-day doesn't leave holes.
	go func() {
		mctx, mcancel := context.WithTimeout(ctx, time.Minute)
		defer mcancel()
		if _, err := scheduleService.MaterializeDay(mctx, time.Now()); err != nil {
			log.Warn("Startup materialization failed", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	runner.Stop()
	bridge.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisutil.Close(redisClient)
	if db != nil {
		_ = database.Close(db)
	}
}
