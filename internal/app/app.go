package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-items-client/internal/config"
	"github.com/samvad-hq/samvad-items-client/internal/logger"
	"github.com/samvad-hq/samvad-items-client/internal/storage"
	"github.com/samvad-hq/samvad-items-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-items-client/pkg/items"
	"github.com/samvad-hq/samvad-items-client/pkg/publishers"
)

// ItemsAPI is the subset of *items.Client the app drives.
type ItemsAPI interface {
	Endpoint() string
	ListItems(ctx context.Context) (any, error)
	AddItem(ctx context.Context, item any) (any, error)
}

// EventPublisher publishes item events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// App wires the items client together with the submission ledger, retry policy
// and event publishers.
type App struct {
	cfg    *config.Config
	client ItemsAPI
	ledger storage.Store
	events EventPublisher
	retry  RetryPolicy
	log    logger.Logger
}

// AddOptions tunes a single Add call.
type AddOptions struct {
	// Force submits even when the same payload was recorded in the ledger.
	Force bool
}

// AddResult describes the outcome of Add. Item holds the endpoint's decoded
// response and is nil when the add was skipped.
type AddResult struct {
	Item        any
	Fingerprint string
	Skipped     bool
	Published   int
}

// New builds an app runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	transport := httpclient.NewRestyClient(cfg.HTTPTimeout)
	client, err := items.New(cfg.BaseURL, transport, items.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("init items client: %w", err)
	}

	ledger, err := storage.NewStore(cfg.LedgerType, cfg.LedgerPath, storage.Options{
		TTL:             cfg.LedgerTTL,
		CleanupInterval: cfg.LedgerCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	log.DebugObj("ledger initialized", "ledger_config", map[string]any{
		"type":                     cfg.LedgerType,
		"path":                     cfg.LedgerPath,
		"ttl_seconds":              int(cfg.LedgerTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.LedgerCleanupInterval.Seconds()),
	})

	events, err := buildPublishers(ctx, cfg, log)
	if err != nil {
		return nil, closeLedgerOnError(err, ledger)
	}

	return newApp(cfg, client, ledger, events, retryPolicyFromConfig(cfg), log), nil
}

// closeLedgerOnError releases ledger after a failed init and keeps both errors.
func closeLedgerOnError(err error, ledger storage.Store) error {
	if cerr := ledger.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close ledger: %w", cerr))
	}
	return err
}

func newApp(cfg *config.Config, client ItemsAPI, ledger storage.Store, events EventPublisher, retry RetryPolicy, log logger.Logger) *App {
	if ledger == nil {
		ledger, _ = storage.NewStore("none", "", storage.Options{})
	}
	if events == nil {
		events = publishers.NewFanout(nil)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &App{
		cfg:    cfg,
		client: client,
		ledger: ledger,
		events: events,
		retry:  retry,
		log:    log,
	}
}

// buildPublishers loads the publishers file when configured.
func buildPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Endpoint returns the items collection URL the app talks to.
func (a *App) Endpoint() string { return a.client.Endpoint() }

// List fetches all items, retrying transient failures per the retry policy.
// The decoded body is returned unchanged.
func (a *App) List(ctx context.Context) (any, error) {
	start := time.Now()
	var out any
	err := a.retry.Do(ctx, "list items", a.log, func() error {
		var err error
		out, err = a.client.ListItems(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.log.InfoObj("items listed", "list_meta", map[string]any{
		"count":      countOf(out),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return out, nil
}

// Add submits item unless an identical payload is already in the ledger, then
// records it and notifies publishers. Publisher failures are logged only.
func (a *App) Add(ctx context.Context, item any, opts AddOptions) (AddResult, error) {
	fp, err := Fingerprint(item)
	if err != nil {
		return AddResult{}, err
	}
	res := AddResult{Fingerprint: fp}

	if !opts.Force {
		seen, err := a.ledger.Seen(fp)
		if err != nil {
			a.log.WarnObj("ledger lookup failed; submitting anyway", "ledger_error", map[string]any{
				"fingerprint": fp,
				"error":       err.Error(),
			})
		}
		if seen {
			a.log.InfoObj("item already submitted; skipping", "fingerprint", fp)
			res.Skipped = true
			return res, nil
		}
	}

	err = a.retry.Do(ctx, "add item", a.log, func() error {
		var err error
		res.Item, err = a.client.AddItem(ctx, item)
		return err
	})
	if err != nil {
		return AddResult{}, err
	}

	if err := a.ledger.Mark(fp); err != nil {
		a.log.WarnObj("ledger mark failed", "ledger_error", map[string]any{
			"fingerprint": fp,
			"error":       err.Error(),
		})
	}

	if a.events.Size() > 0 {
		evt := publishers.NewItemCreatedEvent(a.client.Endpoint(), res.Item)
		n, err := a.events.Publish(ctx, evt)
		res.Published = n
		if err != nil {
			a.log.ErrorObj("item event publish failed", "publish_error", map[string]any{
				"event_id":  evt.ID,
				"delivered": n,
				"error":     err.Error(),
			})
		}
	}

	a.log.InfoObj("item added", "add_meta", map[string]any{
		"fingerprint": fp,
		"published":   res.Published,
	})
	return res, nil
}

// Close releases the ledger and publishers.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ledger: %w", err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	return errors.Join(errs...)
}

// countOf reports the number of entries when v is a JSON array, else -1.
func countOf(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}
	return -1
}

// Fingerprint hashes the JSON encoding of item. Map keys are encoded in sorted
// order, so equal maps share a fingerprint.
func Fingerprint(item any) (string, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return "", &items.EncodeError{Err: err}
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
