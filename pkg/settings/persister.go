package settings

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/observability"
	"github.com/matzehuels/easel/pkg/store"
)

const writeTimeout = 5 * time.Second

// Persister writes calculator state to a store after a quiet period.
type Persister struct {
	store     store.Store
	key       string
	logger    *log.Logger
	debouncer *Debouncer

	mu     sync.Mutex
	saved  Persistable
	dirty  bool
	closed bool
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithKey overrides the store key (default store.StateKey).
func WithKey(key string) PersisterOption {
	return func(p *Persister) { p.key = key }
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) PersisterOption {
	return func(p *Persister) { p.debouncer = NewDebouncer(d) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) PersisterOption {
	return func(p *Persister) { p.logger = l }
}

// NewPersister creates a persister writing to s.
func NewPersister(s store.Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		store:     s,
		key:       store.StateKey,
		debouncer: NewDebouncer(DefaultDelay),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.store == nil {
		p.store = store.NewNullStore()
	}
	return p
}

// Restore reads the persisted state once. Anything missing, unreadable or
// invalid yields the defaults and false.
func (p *Persister) Restore(ctx context.Context) (Persistable, bool) {
	settings, ok := p.load(ctx)
	p.mu.Lock()
	p.saved = settings
	p.mu.Unlock()
	return settings, ok
}

func (p *Persister) load(ctx context.Context) (Persistable, bool) {
	data, found, err := p.store.Load(ctx, p.key)
	observability.Persistence().OnLoad(ctx, p.key, found, err)
	if err != nil {
		p.logger.Warn("could not read saved settings, using defaults", "key", p.key, "err", err)
		return Defaults(), false
	}
	if !found {
		return Defaults(), false
	}

	settings, err := Decode(data)
	if err != nil {
		p.logger.Warn("ignoring saved settings", "key", p.key, "code", errors.GetCode(err), "err", err)
		return Defaults(), false
	}
	return settings, true
}

// Schedule queues a write of s. Repeated calls within the delay coalesce
// into one write of the newest state; unchanged settings are skipped.
func (p *Persister) Schedule(s calculator.State) {
	next := FromState(s)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !p.dirty && next == p.saved {
		p.debouncer.Cancel()
		return
	}
	p.dirty = true
	p.debouncer.Trigger(func() { p.write(next) })
}

// Attach schedules a write after every transition of m. The returned
// function detaches.
func (p *Persister) Attach(m *calculator.Machine) func() {
	return m.Subscribe(func(snap calculator.Snapshot) { p.Schedule(snap.State) })
}

// Flush performs any pending write immediately.
func (p *Persister) Flush() {
	p.debouncer.Flush()
}

// Close cancels any pending write. No write starts after Close returns.
func (p *Persister) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if p.debouncer.Cancel() {
		observability.Persistence().OnCancel(p.key)
		p.logger.Debug("cancelled pending settings write", "key", p.key)
	}
	return nil
}

// Save writes s immediately, bypassing the debouncer.
func (p *Persister) Save(ctx context.Context, s calculator.State) error {
	p.debouncer.Cancel()
	return p.save(ctx, FromState(s))
}

func (p *Persister) write(s Persistable) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.save(ctx, s); err != nil {
		p.logger.Error("failed to save settings", "key", p.key, "err", err)
	}
}

func (p *Persister) save(ctx context.Context, s Persistable) error {
	start := time.Now()
	data, err := Encode(s)
	if err == nil {
		err = p.store.Save(ctx, p.key, data)
	}
	observability.Persistence().OnSave(ctx, p.key, len(data), time.Since(start), err)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.saved = s
	p.dirty = false
	p.mu.Unlock()
	p.logger.Debug("saved settings", "key", p.key, "bytes", len(data))
	return nil
}
