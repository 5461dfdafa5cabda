package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"school-backend/config"
	"school-backend/controller"
	"school-backend/keylock"
	"school-backend/rollnumber"
	"school-backend/store"
	"school-backend/store/memstore"
)

const redisKeyPrefix = "school:"

// backend holds the repositories and connections one process works with.
type backend struct {
	students   controller.StudentStore
	invoices   controller.InvoiceStore
	feeItems   controller.FeeItemStore
	teachers   controller.TeacherStore
	attendance controller.AttendanceStore
	counter    rollnumber.Counter
	checks     map[string]controller.Check
	closers    []func(context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	b := &backend{checks: make(map[string]controller.Check)}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		s := memstore.New()
		b.students, b.invoices, b.feeItems, b.counter = s.Students, s.Invoices, s.FeeItems, s.Counters
		b.teachers, b.attendance = s.Teachers, s.Attendance
		b.checks["database"] = s.Ping
		logger.Warn().Msg("openBackend: using in-memory store, data is lost on exit")
	default:
		client, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		s := store.New(client.Database(cfg.Mongo.Database))
		b.students, b.invoices, b.feeItems, b.counter = s.Students, s.Invoices, s.FeeItems, s.Counters
		b.teachers, b.attendance = s.Teachers, s.Attendance
		b.checks["database"] = s.Ping
		b.closers = append(b.closers, client.Disconnect)
		logger.Info().Str("database", cfg.Mongo.Database).Msg("openBackend: connected to mongo")
	}

	if cfg.Redis.Address != "" {
		client, err := store.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		if cfg.RollNumber.Strategy == rollnumber.StrategyRedis {
			b.counter = store.NewRedisCounter(client, redisKeyPrefix)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("openBackend: connected to redis")
	}

	return b, nil
}

func (b *backend) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Close: failed to release connection")
		}
	}
	b.closers = nil
}

func (b *backend) controllers(cfg *config.Config) (controller.Controllers, error) {
	rolls, err := rollnumber.New(cfg.RollNumber.Strategy, b.students, b.counter)
	if err != nil {
		return controller.Controllers{}, errors.Wrap(err, "roll number allocator")
	}
	loc, err := cfg.Location()
	if err != nil {
		return controller.Controllers{}, err
	}
	var locks *keylock.Storage
	if cfg.RollNumber.Serialize {
		locks = keylock.New()
	}
	rules := controller.AttendanceRules{
		LateAfter:       cfg.Attendance.LateAfter,
		DefaultLocation: cfg.Attendance.DefaultLocation,
	}
	return controller.Controllers{
		Students:   controller.NewStudentController(b.students, b.invoices, rolls, locks, loc),
		Invoices:   controller.NewInvoiceController(b.invoices),
		FeeItems:   controller.NewFeeItemController(b.feeItems),
		Teachers:   controller.NewTeacherController(b.teachers, b.attendance),
		Attendance: controller.NewAttendanceController(b.attendance, b.teachers, rules, loc),
		Health:     controller.NewHealthController(cfg.Env, b.checks),
	}, nil
}
