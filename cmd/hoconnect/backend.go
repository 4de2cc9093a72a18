package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/hoconnect/pkg/config"
	"github.com/cuemby/hoconnect/pkg/events"
	"github.com/cuemby/hoconnect/pkg/instance"
	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/redis/go-redis/v9"
)

// backend is the shared store and bus every instance in this process uses
type backend struct {
	store   storage.Store
	bus     events.Bus
	rdb     *redis.Client
	closers []func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}

	if cfg.Store.Backend == config.StoreRedis || cfg.Bus.Transport == config.BusRedis {
		b.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := b.rdb.Ping(pingCtx).Err(); err != nil {
			_ = b.rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
	}

	switch cfg.Bus.Transport {
	case config.BusRedis:
		bus := events.NewRedisBus(b.rdb, cfg.Redis.Channel)
		if err := bus.Start(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.bus = bus
		b.closers = append(b.closers, bus.Stop)
	default:
		broker := events.NewBroker()
		broker.Start()
		b.bus = broker
		b.closers = append(b.closers, broker.Stop)
	}

	switch cfg.Store.Backend {
	case config.StoreRedis:
		b.store = storage.NewRedisStore(b.rdb, cfg.Store.Prefix)
	default:
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = store
	}

	logger := log.WithComponent("backend")
	logger.Debug().
		Str("store", cfg.Store.Backend).
		Str("bus", cfg.Bus.Transport).
		Msg("Backend opened")
	return b, nil
}

// Close stops the bus, then closes the store and the redis client
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	if b.store != nil {
		_ = b.store.Close()
	}
	if b.rdb != nil {
		// already closed when the store is a RedisStore
		_ = b.rdb.Close()
	}
}

// instanceConfig maps process configuration onto one instance
func instanceConfig(cfg *config.Config) instance.Config {
	return instance.Config{
		ID:             cfg.InstanceID,
		Lifetimes:      cfg.Toast.Lifetimes(),
		ToastCapacity:  cfg.Toast.Capacity,
		LedgerCapacity: cfg.Ledger.Capacity,
		PresenceWindow: cfg.Presence.Window,
		SyncIndicator:  cfg.SyncIndicator,
	}
}

// openInstance opens and starts one instance and, when user is set, logs
// it in. user is an employee id or display name.
func openInstance(b *backend, cfg *config.Config, user string) (*instance.Instance, error) {
	inst := instance.New(b.store, b.bus, instanceConfig(cfg))
	inst.Open()
	inst.Start()

	if user == "" {
		return inst, nil
	}
	emp, ok := findEmployee(inst.Employees(), user)
	if !ok {
		inst.Close()
		return nil, fmt.Errorf("no employee with id or name %q", user)
	}
	if _, err := inst.Login(emp.ID); err != nil {
		inst.Close()
		return nil, fmt.Errorf("failed to log in as %s: %w", emp.Name, err)
	}
	return inst, nil
}

func findEmployee(directory []types.Employee, user string) (types.Employee, bool) {
	for _, e := range directory {
		if e.ID == user {
			return e, true
		}
	}
	for _, e := range directory {
		if e.Name == user {
			return e, true
		}
	}
	return types.Employee{}, false
}

// closeInstance closes inst. An instance without a configured id can never
// resume its session, so the session is cleared first.
func closeInstance(inst *instance.Instance) {
	if cfg.InstanceID == "" {
		inst.Logout()
	}
	inst.Close()
}
