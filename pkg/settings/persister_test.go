package settings

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/store"
)

// memStore records every save.
type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
	fail  error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, false, m.fail
	}
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.saves++
	m.data[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var _ store.Store = (*memStore)(nil)

func quiet() *log.Logger { return log.New(io.Discard) }

func TestPersisterCoalescesTransitions(t *testing.T) {
	ms := newMemStore()
	p := NewPersister(ms, WithDelay(30*time.Millisecond), WithLogger(quiet()))
	defer p.Close()

	m := calculator.New(calculator.WithLogger(quiet()))
	detach := p.Attach(m)
	defer detach()

	for _, border := range []float64{0.25, 0.5, 0.75, 1} {
		if err := m.Dispatch(calculator.SetField{Field: calculator.FieldMinBorder, Value: border}); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(150 * time.Millisecond)

	if n := ms.saveCount(); n != 1 {
		t.Fatalf("saves = %d, want 1", n)
	}
	got, ok := NewPersister(ms, WithLogger(quiet())).Restore(context.Background())
	if !ok || got.MinBorder != 1 {
		t.Errorf("Restore = %+v, %v; want min border 1", got, ok)
	}
}

func TestPersisterCloseCancelsPendingWrite(t *testing.T) {
	ms := newMemStore()
	p := NewPersister(ms, WithDelay(30*time.Millisecond), WithLogger(quiet()))

	s := calculator.DefaultState()
	s.PaperSize = "5x7"
	p.Schedule(s)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	p.Schedule(s)
	time.Sleep(100 * time.Millisecond)

	if n := ms.saveCount(); n != 0 {
		t.Errorf("saves = %d, want 0 after Close", n)
	}
}

func TestPersisterSkipsUnchangedState(t *testing.T) {
	ms := newMemStore()
	p := NewPersister(ms, WithDelay(time.Hour), WithLogger(quiet()))
	defer p.Close()

	p.Restore(context.Background())
	p.Schedule(calculator.DefaultState())
	p.Flush()
	if n := ms.saveCount(); n != 0 {
		t.Errorf("saves = %d, want 0 for unchanged defaults", n)
	}

	s := calculator.DefaultState()
	s.ShowBlades = false
	p.Schedule(s)
	p.Flush()
	p.Schedule(s)
	p.Flush()
	if n := ms.saveCount(); n != 1 {
		t.Errorf("saves = %d, want 1", n)
	}
}

func TestPersisterRestoreFallsBack(t *testing.T) {
	ctx := context.Background()

	ms := newMemStore()
	got, ok := NewPersister(ms, WithLogger(quiet())).Restore(ctx)
	if ok || got != Defaults() {
		t.Errorf("empty store: %+v, %v", got, ok)
	}

	ms.data[store.StateKey] = []byte(`{"version":7}`)
	got, ok = NewPersister(ms, WithLogger(quiet())).Restore(ctx)
	if ok || got != Defaults() {
		t.Errorf("bad version: %+v, %v", got, ok)
	}

	ms.fail = errors.New(errors.ErrCodeStorage, "disk on fire")
	got, ok = NewPersister(ms, WithLogger(quiet())).Restore(ctx)
	if ok || got != Defaults() {
		t.Errorf("failing store: %+v, %v", got, ok)
	}
}

func TestPersisterSaveWithFileStore(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := NewPersister(fs, WithKey("darkroom"), WithLogger(quiet()))

	s := calculator.DefaultState()
	s.PaperSize, s.AspectRatio = "16x20", "4:3"
	if err := p.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, ok := NewPersister(fs, WithKey("darkroom"), WithLogger(quiet())).Restore(ctx)
	if !ok || got != FromState(s) {
		t.Errorf("Restore = %+v, %v", got, ok)
	}
}
