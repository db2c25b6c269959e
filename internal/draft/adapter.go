// Package draft persists the working copy of an application form as a
// remote draft record. The first save creates the record; every later save
// replaces the same record by id, so repeated saves never produce duplicates.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

var (
	// ErrNoDraft is returned by operations that need a saved draft.
	ErrNoDraft = errors.New("draft: no draft has been saved yet")

	// ErrNotDraft is returned by Delete when the record has left draft status.
	ErrNotDraft = errors.New("draft: application is no longer a draft")

	// ErrMissingID is returned when the backend's create response has no id.
	ErrMissingID = errors.New("draft: create response has no id")
)

const defaultUploadConcurrency = 3

// API is the subset of the backend client the adapter uses.
// *backend.Client satisfies it.
type API interface {
	CreateApplication(ctx context.Context, rec backend.Record) (backend.Record, error)
	UpdateApplication(ctx context.Context, id string, rec backend.Record) (backend.Record, error)
	GetApplication(ctx context.Context, id string) (backend.Record, error)
	DeleteApplication(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) (backend.Record, error)
	UploadAttachment(ctx context.Context, id string, up backend.Upload) (backend.Record, error)
	DeleteAttachment(ctx context.Context, id, attID string) error
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithSkipUnchanged makes Save return the previous result without a request
// when the wire payload is byte-identical to the last saved one.
func WithSkipUnchanged(skip bool) Option {
	return func(a *Adapter) { a.skipUnchanged = skip }
}

// WithUploadConcurrency bounds the parallel uploads of UploadAll.
func WithUploadConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.uploadConcurrency = n
		}
	}
}

// Adapter saves one application. Saves are serialized, so two concurrent
// first saves still create only one record.
type Adapter struct {
	api               API
	codec             Codec
	logger            *log.Logger
	skipUnchanged     bool
	uploadConcurrency int

	mu        sync.Mutex
	id        string
	status    string
	lastHash  uint64
	hasHash   bool
	lastSaved form.Values

	// createKey is the Idempotency-Key of the pending create. It survives
	// retryable failures and is dropped once a create succeeds or is rejected.
	createKey string
}

// NewAdapter creates an adapter with no record yet.
func NewAdapter(api API, codec Codec, opts ...Option) *Adapter {
	a := &Adapter{
		api:               api,
		codec:             codec,
		logger:            logging.New("draft"),
		uploadConcurrency: defaultUploadConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the record id, empty before the first save or load.
func (a *Adapter) ID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.id
}

// Status returns the record status reported by the backend.
func (a *Adapter) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Save creates the record on the first call and replaces it afterwards. It
// returns the stored record in form shape, which callers use to overwrite
// their working copy. Field errors reported by the backend come back as
// *backend.FieldErrors with form paths.
func (a *Adapter) Save(ctx context.Context, values form.Values) (form.Values, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	wire := a.codec.ToWire(values)
	delete(wire, "id")
	if a.id != "" {
		wire["id"] = a.id
	}

	hash, err := fingerprint(wire)
	if err != nil {
		return nil, err
	}
	if a.skipUnchanged && a.hasHash && hash == a.lastHash {
		a.logger.Debug("draft unchanged, skipping save", "id", a.id)
		return form.CloneValues(a.lastSaved), nil
	}

	var rec backend.Record
	if a.id == "" {
		if a.createKey == "" {
			a.createKey = uuid.NewString()
		}
		rec, err = a.api.CreateApplication(backend.WithIdempotencyKey(ctx, a.createKey), wire)
		if err != nil {
			if !backend.IsRetryable(err) {
				a.createKey = ""
			}
			return nil, a.wrap("create", err)
		}
		a.createKey = ""
		id, _ := rec["id"].(string)
		if id == "" {
			return nil, ErrMissingID
		}
		a.id = id
		a.logger.Info("draft created", "id", id)
	} else {
		rec, err = a.api.UpdateApplication(ctx, a.id, wire)
		if err != nil {
			return nil, a.wrap("update", err)
		}
		a.logger.Debug("draft updated", "id", a.id)
	}

	a.remember(rec)
	a.lastHash, a.hasHash = hash, true
	return form.CloneValues(a.lastSaved), nil
}

// Load fetches record id and adopts it as the adapter's record.
func (a *Adapter) Load(ctx context.Context, id string) (form.Values, error) {
	rec, err := a.api.GetApplication(ctx, id)
	if err != nil {
		return nil, a.wrap("load", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.id = id
	a.hasHash = false
	a.remember(rec)
	return form.CloneValues(a.lastSaved), nil
}

// Delete removes the draft. Records that left draft status cannot be
// deleted.
func (a *Adapter) Delete(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.id == "" {
		return ErrNoDraft
	}
	if a.status != "" && a.status != backend.StatusDraft {
		return fmt.Errorf("%w: status %q", ErrNotDraft, a.status)
	}
	if err := a.api.DeleteApplication(ctx, a.id); err != nil {
		return a.wrap("delete", err)
	}
	a.logger.Info("draft deleted", "id", a.id)
	a.id, a.status, a.hasHash, a.lastSaved = "", "", false, nil
	return nil
}

// Submit moves the record to received status.
func (a *Adapter) Submit(ctx context.Context) (form.Values, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.id == "" {
		return nil, ErrNoDraft
	}
	rec, err := a.api.SetStatus(ctx, a.id, backend.StatusReceived)
	if err != nil {
		return nil, a.wrap("submit", err)
	}
	a.logger.Info("application submitted", "id", a.id)
	if _, ok := rec["id"]; !ok {
		rec["id"] = a.id
	}
	a.remember(rec)
	return form.CloneValues(a.lastSaved), nil
}

// Upload attaches one file to the saved draft and returns the attachment
// record in form shape.
func (a *Adapter) Upload(ctx context.Context, up backend.Upload) (form.Values, error) {
	id := a.ID()
	if id == "" {
		return nil, ErrNoDraft
	}
	rec, err := a.api.UploadAttachment(ctx, id, up)
	if err != nil {
		return nil, a.wrap("upload "+up.FileName, err)
	}
	return a.codec.FromWire(rec), nil
}

// Remove deletes attachment attID from the saved draft.
func (a *Adapter) Remove(ctx context.Context, attID string) error {
	id := a.ID()
	if id == "" {
		return ErrNoDraft
	}
	if err := a.api.DeleteAttachment(ctx, id, attID); err != nil {
		return a.wrap("remove attachment", err)
	}
	return nil
}

// UploadAll uploads files concurrently, bounded by the upload concurrency.
// Results keep the order of ups. The first failure cancels the remaining
// uploads and is returned.
func (a *Adapter) UploadAll(ctx context.Context, ups []backend.Upload) ([]form.Values, error) {
	if a.ID() == "" {
		return nil, ErrNoDraft
	}
	results := make([]form.Values, len(ups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.uploadConcurrency)
	for i, up := range ups {
		g.Go(func() error {
			rec, err := a.Upload(gctx, up)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Adapter) remember(rec backend.Record) {
	if s, ok := rec["status"].(string); ok {
		a.status = s
	}
	a.lastSaved = a.codec.FromWire(rec)
}

// wrap converts backend field errors to form paths and adds context to
// everything else.
func (a *Adapter) wrap(op string, err error) error {
	var fe *backend.FieldErrors
	if errors.As(err, &fe) {
		return fe.MapPaths(a.codec.FormPath)
	}
	return fmt.Errorf("draft: %s: %w", op, err)
}

func fingerprint(rec backend.Record) (uint64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("draft: encode payload: %w", err)
	}
	return xxhash.Sum64(data), nil
}
