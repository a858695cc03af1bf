// Package storage persists the cart snapshot and the offline queue as JSON
// documents in a kvstore.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/pkg/kvstore"
)

const (
	CartKey  = "pos-store"
	QueueKey = "pos_pending"
	// CorruptQueueKey holds the last queue document that could not be decoded.
	CorruptQueueKey = QueueKey + ".corrupt"
)

// ErrCorrupt marks a stored document that exists but cannot be decoded.
var ErrCorrupt = errors.New("stored document is corrupt")

type CartSnapshots struct {
	kv kvstore.Store
}

func NewCartSnapshots(kv kvstore.Store) *CartSnapshots {
	return &CartSnapshots{kv: kv}
}

// Load returns an empty state when nothing was saved yet.
func (s *CartSnapshots) Load(ctx context.Context) (domain.CartState, error) {
	var state domain.CartState
	found, err := getJSON(ctx, s.kv, CartKey, &state)
	if err != nil || !found {
		return domain.CartState{}, err
	}
	return state, nil
}

func (s *CartSnapshots) Save(ctx context.Context, state domain.CartState) error {
	return setJSON(ctx, s.kv, CartKey, state)
}

type QueueEntries struct {
	kv  kvstore.Store
	log *slog.Logger
}

func NewQueueEntries(kv kvstore.Store, log *slog.Logger) *QueueEntries {
	if log == nil {
		log = slog.Default()
	}
	return &QueueEntries{kv: kv, log: log}
}

// Load moves an undecodable queue document to CorruptQueueKey and reports an
// empty queue, so later writes are durable again.
func (s *QueueEntries) Load(ctx context.Context) ([]domain.QueuedSale, error) {
	var entries []domain.QueuedSale
	_, err := getJSON(ctx, s.kv, QueueKey, &entries)
	if errors.Is(err, ErrCorrupt) {
		if qerr := s.quarantine(ctx); qerr != nil {
			return nil, fmt.Errorf("%w (quarantine failed: %v)", err, qerr)
		}
		s.log.ErrorContext(ctx, "queue document corrupt, moved aside",
			slog.String("key", CorruptQueueKey), slog.Any("err", err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *QueueEntries) quarantine(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, QueueKey)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, CorruptQueueKey, raw); err != nil {
		return err
	}
	return s.kv.Delete(ctx, QueueKey)
}

func (s *QueueEntries) Save(ctx context.Context, entries []domain.QueuedSale) error {
	if len(entries) == 0 {
		err := s.kv.Delete(ctx, QueueKey)
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return err
	}
	return setJSON(ctx, s.kv, QueueKey, entries)
}

func getJSON(ctx context.Context, kv kvstore.Store, key string, v any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, kv kvstore.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
