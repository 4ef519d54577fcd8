package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"macrolog/logger"
)

const KindLedgerUpdated = "ledger.updated"

// LedgerEvent tells a profile's open sessions that its ledger changed.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	ProfileID uuid.UUID `json:"profile_id"`
	Summary   *Summary  `json:"summary,omitempty"`
	At        time.Time `json:"at"`
}

// EventBus fans ledger events out to every API instance.
type EventBus interface {
	Publish(ctx context.Context, ev LedgerEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev LedgerEvent)) error
	Close() error
}

// localBus delivers events in-process, for single-instance deployments.
type localBus struct {
	mu       sync.RWMutex
	handlers []func(LedgerEvent)
}

func NewLocalBus() EventBus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, ev LedgerEvent) error {
	b.mu.RLock()
	handlers := append(([]func(LedgerEvent))(nil), b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onEvent func(ev LedgerEvent)) error {
	if onEvent == nil {
		return errors.New("onEvent callback required")
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onEvent)
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error { return nil }

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus publishes over a Redis pub/sub channel so every instance's
// forwarder sees every event.
func NewRedisBus(ctx context.Context, addr, channel string, log *logger.Logger) (EventBus, error) {
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	if channel == "" {
		channel = "ledger"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, ev LedgerEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(ev LedgerEvent)) error {
	if onEvent == nil {
		return errors.New("onEvent callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev LedgerEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad redis ledger payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error { return b.rdb.Close() }
