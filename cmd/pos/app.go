package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/venezia/venezia-pos/internal/pos/cart"
	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/discount"
	"github.com/venezia/venezia-pos/internal/pos/queue"
	"github.com/venezia/venezia-pos/internal/pos/register"
	"github.com/venezia/venezia-pos/internal/pos/remote/grpcapi"
	"github.com/venezia/venezia-pos/internal/pos/remote/httpapi"
	"github.com/venezia/venezia-pos/internal/pos/storage"
	"github.com/venezia/venezia-pos/internal/pos/ticket"
	"github.com/venezia/venezia-pos/pkg/config"
	"github.com/venezia/venezia-pos/pkg/kvstore"
	"github.com/venezia/venezia-pos/pkg/logger"
)

// backend is what the register needs from the server, over either transport.
type backend interface {
	catalog.Backend
	discount.Validator
	queue.Submitter
}

type app struct {
	cart     *cart.Store
	queue    *queue.Queue
	register *register.Register
	renderer *ticket.Renderer
	closers  []io.Closer
}

type openFunc func(ctx context.Context) (*app, error)

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "pos",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  "text",
		Writer:  os.Stderr,
	})

	kv, err := kvstore.OpenSQLite(ctx, cfg.POS.StatePath)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{kv}

	var be backend
	switch cfg.POS.Transport {
	case "grpc":
		cc, err := grpcapi.Dial(cfg.POS.GRPCAddr)
		if err != nil {
			kv.Close()
			return nil, err
		}
		closers = append(closers, cc)
		be = grpcapi.New(cc)
	case "http", "":
		be = httpapi.New(cfg.POS.APIURL, httpapi.WithToken(cfg.POS.APIToken), httpapi.WithLogger(log))
	default:
		kv.Close()
		return nil, fmt.Errorf("unknown POS_TRANSPORT %q", cfg.POS.Transport)
	}

	a := newApp(ctx, kv, be, cfg.POS, log)
	a.closers = closers
	return a, nil
}

func newApp(ctx context.Context, kv kvstore.Store, be backend, cfg config.POSConfig, log *slog.Logger) *app {
	c := cart.New(ctx, storage.NewCartSnapshots(kv), log)
	q := queue.New(storage.NewQueueEntries(kv, log), be, log)
	return &app{
		cart:  c,
		queue: q,
		register: register.New(register.Deps{
			Cart:          c,
			Catalog:       catalog.NewClient(be),
			Codes:         discount.NewResolver(be, cfg.StoreID),
			Queue:         q,
			Submitter:     be,
			StoreID:       cfg.StoreID,
			SubmitTimeout: cfg.SubmitTimeout,
			Log:           log,
		}),
		renderer: ticket.NewRenderer(),
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
