package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/audit"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/redislock"
	"github.com/nerrad567/gray-logic-designer/internal/project"
)

// runtime is the set of connected dependencies behind a project service.
// Optional clients are nil when disabled.
type runtime struct {
	db      *database.DB
	service *project.Service
	metrics *metrics.Metrics
	mqtt    *mqtt.Client
	influx  *influxdb.Client
	locker  *redislock.Locker
	closers []func()
}

// Close releases everything in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// openDatabase opens and migrates the design database.
func (a *app) openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Database.Path,
		WALMode:     a.cfg.Database.WALMode,
		BusyTimeout: a.cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	a.log.Debug("database ready", "path", a.cfg.Database.Path)
	return db, nil
}

// connect opens the database and every enabled integration and builds the
// project service over them.
func (a *app) connect(ctx context.Context) (*runtime, error) {
	rt := &runtime{}
	db, err := a.openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.closers = append(rt.closers, func() {
		if err := db.Close(); err != nil {
			a.log.Error("error closing database", "error", err)
		}
	})

	rt.metrics = metrics.New()
	rt.service = project.NewService(design.NewStore(db.DB), project.Options(a.cfg.Designer))
	rt.service.SetLogger(a.log)
	rt.service.SetMetrics(rt.metrics)
	rt.service.SetHistory(audit.NewSQLiteRepository(db.DB))

	if err := a.connectRedis(ctx, rt); err != nil {
		rt.Close()
		return nil, err
	}
	if err := a.connectMQTT(rt); err != nil {
		rt.Close()
		return nil, err
	}
	if err := a.connectInflux(rt); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (a *app) connectRedis(ctx context.Context, rt *runtime) error {
	locker, err := redislock.Connect(ctx, a.cfg.Redis)
	if errors.Is(err, redislock.ErrDisabled) {
		a.log.Debug("redis lock disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("connecting to Redis: %w", err)
	}
	rt.locker = locker
	rt.service.SetLocker(locker)
	rt.closers = append(rt.closers, func() {
		if err := locker.Close(); err != nil {
			a.log.Error("error closing Redis", "error", err)
		}
	})
	a.log.Info("Redis lock connected", "addr", a.cfg.Redis.Addr)
	return nil
}

func (a *app) connectMQTT(rt *runtime) error {
	if !a.cfg.MQTT.Enabled {
		a.log.Debug("MQTT disabled")
		return nil
	}
	client, err := mqtt.Connect(a.cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(a.log)
	client.SetOnConnect(func() { a.log.Info("MQTT reconnected") })
	client.SetOnDisconnect(func(err error) { a.log.Warn("MQTT disconnected", "error", err) })
	rt.mqtt = client
	rt.service.SetEvents(client)
	rt.closers = append(rt.closers, func() {
		if err := client.Close(); err != nil {
			a.log.Error("error closing MQTT", "error", err)
		}
	})
	a.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
		"client_id", a.cfg.MQTT.Broker.ClientID,
	)
	return nil
}

func (a *app) connectInflux(rt *runtime) error {
	client, err := influxdb.Connect(a.cfg.InfluxDB)
	if errors.Is(err, influxdb.ErrDisabled) {
		a.log.Debug("InfluxDB disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) { a.log.Error("InfluxDB write error", "error", err) })
	rt.influx = client
	rt.service.SetStats(client)
	rt.closers = append(rt.closers, func() {
		if err := client.Close(); err != nil {
			a.log.Error("error closing InfluxDB", "error", err)
		}
	})
	a.log.Info("InfluxDB connected", "url", a.cfg.InfluxDB.URL, "bucket", a.cfg.InfluxDB.Bucket)
	return nil
}
