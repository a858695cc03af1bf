// Package queue holds sales that could not be submitted and resubmits them
// in order when asked to.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

var ErrEntryNotFound = errors.New("queued sale not found")

// PassTimeout bounds one RetryAll pass.
const PassTimeout = 2 * time.Minute

type Storage interface {
	Load(ctx context.Context) ([]domain.QueuedSale, error)
	Save(ctx context.Context, entries []domain.QueuedSale) error
}

type Submitter interface {
	SubmitSale(ctx context.Context, payload domain.SalePayload) (domain.SaleResult, error)
}

type RetryResult struct {
	Success bool
	// Remaining counts the entries of this pass that failed again.
	Remaining int
	Sent      int
}

// Queue keeps entries in durable storage when it can and in memory when it
// cannot. Memory-only entries are folded back into storage on the next
// successful write.
type Queue struct {
	storage   Storage
	submitter Submitter
	log       *slog.Logger

	mu      sync.Mutex
	unsaved []domain.QueuedSale

	retries     singleflight.Group
	passTimeout time.Duration

	now   func() time.Time
	newID func() string
}

func New(storage Storage, submitter Submitter, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		storage:     storage,
		submitter:   submitter,
		log:         log,
		passTimeout: PassTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Enqueue never fails; a storage error leaves the entry in memory.
func (q *Queue) Enqueue(ctx context.Context, payload domain.SalePayload) domain.QueuedSale {
	entry := domain.QueuedSale{
		ID:      q.newID(),
		Payload: payload,
		TS:      q.now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	durable, err := q.storage.Load(ctx)
	if err != nil {
		q.unsaved = append(q.unsaved, entry)
		q.log.WarnContext(ctx, "queue storage unreadable, keeping sale in memory",
			slog.String("entry_id", entry.ID), slog.Any("err", err))
		return entry
	}

	all := append(merge(durable, q.unsaved), entry)
	if err := q.storage.Save(ctx, all); err != nil {
		q.unsaved = append(q.unsaved, entry)
		q.log.WarnContext(ctx, "queue storage not writable, keeping sale in memory",
			slog.String("entry_id", entry.ID), slog.Any("err", err))
		return entry
	}
	q.unsaved = nil

	q.log.InfoContext(ctx, "sale queued", slog.String("entry_id", entry.ID), slog.Int("size", len(all)))
	return entry
}

// RetryAll resubmits every entry once, oldest first. A call made while a
// pass is running waits for that pass and gets its result. The pass is not
// tied to the caller that started it; it runs until done or PassTimeout.
// A caller whose ctx ends first returns ctx.Err() and the pass continues.
func (q *Queue) RetryAll(ctx context.Context) (RetryResult, error) {
	ch := q.retries.DoChan("retry", func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.passTimeout)
		defer cancel()
		return q.retryPass(pctx)
	})

	select {
	case r := <-ch:
		if r.Shared {
			q.log.DebugContext(ctx, "joined in-flight queue retry")
		}
		if r.Err != nil {
			return RetryResult{}, r.Err
		}
		return r.Val.(RetryResult), nil
	case <-ctx.Done():
		return RetryResult{}, ctx.Err()
	}
}

func (q *Queue) retryPass(ctx context.Context) (RetryResult, error) {
	q.mu.Lock()
	durable, loadErr := q.storage.Load(ctx)
	if loadErr != nil {
		q.log.WarnContext(ctx, "queue storage unreadable, retrying memory entries only", slog.Any("err", loadErr))
		durable = nil
	}
	pending := merge(durable, q.unsaved)
	q.mu.Unlock()

	if len(pending) == 0 {
		return RetryResult{Success: true}, nil
	}

	inPass := make(map[string]struct{}, len(pending))
	var remaining []domain.QueuedSale
	sent := 0

	for _, entry := range pending {
		inPass[entry.ID] = struct{}{}

		if err := ctx.Err(); err != nil {
			entry.Attempts++
			entry.LastError = err.Error()
			remaining = append(remaining, entry)
			continue
		}

		res, err := q.submitter.SubmitSale(ctx, entry.Payload)
		if err != nil {
			entry.Attempts++
			entry.LastError = err.Error()
			remaining = append(remaining, entry)
			q.log.WarnContext(ctx, "queued sale still failing",
				slog.String("entry_id", entry.ID),
				slog.Int("attempts", entry.Attempts),
				slog.Any("err", err))
			continue
		}

		sent++
		q.log.InfoContext(ctx, "queued sale submitted",
			slog.String("entry_id", entry.ID),
			slog.Int64("sale_id", res.SaleID),
			slog.Bool("duplicate", res.Duplicate))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// Entries discarded during the pass are gone from both lists; entries
	// enqueued during the pass are in one of them but not in inPass.
	current, err := q.storage.Load(ctx)
	durableOK := loadErr == nil && err == nil
	if err != nil {
		current = nil
	}
	known := merge(current, q.unsaved)
	present := make(map[string]struct{}, len(known))
	for _, e := range known {
		present[e.ID] = struct{}{}
	}

	final := make([]domain.QueuedSale, 0, len(remaining)+len(known))
	for _, e := range remaining {
		if _, ok := present[e.ID]; ok || !durableOK {
			final = append(final, e)
		}
	}
	for _, e := range known {
		if _, ok := inPass[e.ID]; !ok {
			final = append(final, e)
		}
	}

	if durableOK {
		if err := q.storage.Save(ctx, final); err != nil {
			q.log.WarnContext(ctx, "queue storage not writable after retry", slog.Any("err", err))
			q.unsaved = final
		} else {
			q.unsaved = nil
		}
	} else {
		q.unsaved = final
	}

	return RetryResult{Success: len(remaining) == 0, Remaining: len(remaining), Sent: sent}, nil
}

// Entries lists durable and memory-only entries in queue order.
func (q *Queue) Entries(ctx context.Context) []domain.QueuedSale {
	q.mu.Lock()
	defer q.mu.Unlock()

	durable, err := q.storage.Load(ctx)
	if err != nil {
		durable = nil
	}
	return merge(durable, q.unsaved)
}

func (q *Queue) Size(ctx context.Context) int {
	return len(q.Entries(ctx))
}

// Discard drops an entry the operator knows will never be accepted.
func (q *Queue) Discard(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	found := false
	unsaved := q.unsaved[:0:0]
	for _, e := range q.unsaved {
		if e.ID == id {
			found = true
			continue
		}
		unsaved = append(unsaved, e)
	}

	durable, err := q.storage.Load(ctx)
	if err != nil {
		if !found {
			return ErrEntryNotFound
		}
		q.unsaved = unsaved
		return nil
	}

	kept := make([]domain.QueuedSale, 0, len(durable))
	for _, e := range durable {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrEntryNotFound
	}

	all := merge(kept, unsaved)
	if err := q.storage.Save(ctx, all); err != nil {
		return err
	}
	q.unsaved = nil
	q.log.InfoContext(ctx, "queued sale discarded", slog.String("entry_id", id))
	return nil
}

// merge appends the entries of b missing from a, keeping order.
func merge(a, b []domain.QueuedSale) []domain.QueuedSale {
	out := make([]domain.QueuedSale, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]domain.QueuedSale{a, b} {
		for _, e := range list {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
