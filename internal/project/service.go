package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/audit"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/redislock"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
)

// Logger is the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventPublisher receives project events. *mqtt.Client implements it.
type EventPublisher interface {
	PublishEvent(projectID int64, event string, v any) error
}

// StatsWriter receives run statistics. *influxdb.Client implements it.
type StatsWriter interface {
	WriteCompileStats(s influxdb.RunStats)
}

// Service implements the designer's project operations.
type Service struct {
	store    *design.Store
	opts     roehn.Options
	reserved []int

	locks  *keyedMutex
	remote *redislock.Locker

	events  EventPublisher
	stats   StatsWriter
	history audit.Repository
	metrics *metrics.Metrics
	logger  Logger
}

// NewService creates a service over store. opts configures exported ROEHN
// documents; the controller's network address is never handed to a
// module or keypad.
func NewService(store *design.Store, opts roehn.Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		opts:     opts,
		reserved: []int{opts.Controller.NetworkAddress},
		locks:    newKeyedMutex(),
		logger:   noopLogger{},
	}
}

// Options converts the designer section of the configuration into
// compiler options.
func Options(cfg config.DesignerConfig) roehn.Options {
	return roehn.Options{
		SoftwareVersion: cfg.SoftwareVersion,
		TimeZone:        cfg.TimeZone,
		Latitude:        cfg.Latitude,
		Longitude:       cfg.Longitude,
		TechnicalArea:   cfg.TechnicalArea,
		TechnicalRoom:   cfg.TechnicalRoom,
		BoardName:       cfg.BoardName,
		Controller: roehn.ControllerOptions{
			Model:          cfg.Controller.Model,
			IPAddress:      cfg.Controller.IPAddress,
			NetworkAddress: cfg.Controller.NetworkAddress,
			DeviceID:       cfg.Controller.DeviceID,
		},
		ProgrammerName:  cfg.Programmer.Name,
		ProgrammerEmail: cfg.Programmer.Email,
		Now:             time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetLocker adds a cross-process Redis lock around project writes.
func (s *Service) SetLocker(l *redislock.Locker) {
	s.remote = l
}

// SetEvents sets the publisher of exported/imported events.
func (s *Service) SetEvents(p EventPublisher) {
	s.events = p
}

// SetStats sets the writer of run statistics.
func (s *Service) SetStats(w StatsWriter) {
	s.stats = w
}

// SetHistory sets the transfer log written after every export and import.
func (s *Service) SetHistory(r audit.Repository) {
	s.history = r
}

// SetMetrics sets the Prometheus collectors.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Store exposes the underlying store for read-only callers.
func (s *Service) Store() *design.Store {
	return s.store
}

// write runs fn in one transaction while holding the project's lock.
// Allocation refusals are counted.
func (s *Service) write(ctx context.Context, projectID int64, fn func(tx *design.Store) error) error {
	unlock, err := s.lockProject(ctx, projectID)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.WithTx(ctx, fn)
	if reason := rejection(err); reason != "" {
		s.metrics.ObserveRejection(reason)
		s.logger.Debug("allocation refused", "project_id", projectID, "reason", reason, "error", err)
	}
	return err
}

func rejection(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, design.ErrDuplicateAddress):
		return "duplicate_address"
	case errors.Is(err, design.ErrAddressExhausted):
		return "address_exhausted"
	case errors.Is(err, design.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, design.ErrIncompatibleKind):
		return "incompatible_kind"
	}
	return ""
}

// sameProject fails when an entity belongs to another project than want.
func sameProject(what string, got, want int64) error {
	if got != want {
		return fmt.Errorf("%w: %s belongs to another project", design.ErrInvalid, what)
	}
	return nil
}
