// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine packages never import a metrics backend. Instead they report
// events to whatever hooks were registered at startup; by default every hook
// is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCalculatorHooks(&myCalculatorHooks{})
//	    observability.SetPersistenceHooks(&myPersistenceHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Calculator().OnSolve(duration, result.SearchUsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Calculator Hooks
// =============================================================================

// CalculatorHooks receives events from the state machine and solver.
type CalculatorHooks interface {
	// OnTransition records an accepted or rejected transition.
	OnTransition(action string, duration time.Duration, err error)

	// OnSolve records a geometry solve that was not served from the memo.
	OnSolve(duration time.Duration, searchUsed bool)

	// OnMemo records whether derived values were reused.
	OnMemo(hit bool)
}

// =============================================================================
// Persistence Hooks
// =============================================================================

// PersistenceHooks receives events from settings persistence.
type PersistenceHooks interface {
	// OnSave records a (debounced) write of the calculator document.
	OnSave(ctx context.Context, key string, size int, duration time.Duration, err error)

	// OnLoad records a read at startup.
	OnLoad(ctx context.Context, key string, found bool, err error)

	// OnCancel records a pending write dropped by Close.
	OnCancel(key string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCalculatorHooks is a no-op implementation of CalculatorHooks.
type NoopCalculatorHooks struct{}

func (NoopCalculatorHooks) OnTransition(string, time.Duration, error) {}
func (NoopCalculatorHooks) OnSolve(time.Duration, bool)               {}
func (NoopCalculatorHooks) OnMemo(bool)                               {}

// NoopPersistenceHooks is a no-op implementation of PersistenceHooks.
type NoopPersistenceHooks struct{}

func (NoopPersistenceHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopPersistenceHooks) OnLoad(context.Context, string, bool, error)               {}
func (NoopPersistenceHooks) OnCancel(string)                                           {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	calculatorHooks  CalculatorHooks  = NoopCalculatorHooks{}
	persistenceHooks PersistenceHooks = NoopPersistenceHooks{}
	hooksMu          sync.RWMutex
)

// SetCalculatorHooks registers custom calculator hooks.
// This should be called once at application startup.
func SetCalculatorHooks(h CalculatorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		calculatorHooks = h
	}
}

// SetPersistenceHooks registers custom persistence hooks.
// This should be called once at application startup.
func SetPersistenceHooks(h PersistenceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		persistenceHooks = h
	}
}

// Calculator returns the registered calculator hooks.
func Calculator() CalculatorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return calculatorHooks
}

// Persistence returns the registered persistence hooks.
func Persistence() PersistenceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return persistenceHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	calculatorHooks = NoopCalculatorHooks{}
	persistenceHooks = NoopPersistenceHooks{}
}
