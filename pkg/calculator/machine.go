package calculator

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/observability"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/warnings"
)

// Derived holds everything computed from a State.
type Derived struct {
	Dimensions paper.Dimensions `json:"dimensions"`
	Geometry   geometry.Result  `json:"geometry"`
	Warnings   warnings.Set     `json:"warnings"`
}

// Snapshot is a State together with its derived values.
type Snapshot struct {
	State   State
	Derived Derived
}

// borderStep is the grid a fallback border is snapped to, in inches.
const borderStep = 1.0 / 16

// memoKey captures every input the derivation reads.
type memoKey struct {
	resolve      paper.Input
	typedBorder  float64
	border       float64
	enableOffset bool
	offsetX      float64
	offsetY      float64
	ignoreBorder bool
}

// Machine is the single owner of the calculator State. Dispatch is meant to
// be called from one goroutine; the read methods are safe from any.
type Machine struct {
	mu sync.RWMutex

	state      State
	defaults   State
	hasInitial bool

	resolver *paper.Resolver
	easels   paper.EaselTable
	solver   geometry.Options
	logger   *log.Logger

	derived Derived
	memo    memoKey
	hasMemo bool

	subscribers map[int]func(Snapshot)
	nextSub     int
}

// Option configures a Machine.
type Option func(*Machine)

// WithResolver sets the dimension resolver (and thus the paper/ratio tables).
func WithResolver(r *paper.Resolver) Option {
	return func(m *Machine) { m.resolver = r }
}

// WithEasels sets the easel table used for the paper-size advisory.
func WithEasels(t paper.EaselTable) Option {
	return func(m *Machine) { m.easels = t }
}

// WithSolverOptions sets blade thickness and search parameters.
func WithSolverOptions(o geometry.Options) Option {
	return func(m *Machine) { m.solver = o }
}

// WithDefaults sets the document used by ResetToDefaults and as the
// starting state.
func WithDefaults(s State) Option {
	return func(m *Machine) { m.defaults = s }
}

// WithInitialState starts the machine from s (typically restored from
// storage) instead of the defaults.
func WithInitialState(s State) Option {
	return func(m *Machine) {
		m.state = s
		m.hasInitial = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New creates a machine and computes the derived values of its first State.
func New(opts ...Option) *Machine {
	m := &Machine{
		defaults:    DefaultState(),
		easels:      paper.DefaultEasels(),
		solver:      geometry.DefaultOptions(),
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.resolver == nil {
		m.resolver = paper.NewResolver(paper.DefaultPapers(), paper.DefaultRatios(), m.logger)
	}
	if !m.hasInitial {
		m.state = m.defaults
	}
	m.commitShadows(&m.state)
	m.recompute()
	return m
}

// Dispatch applies a transition. A rejected action leaves the State
// untouched and returns a coded error.
func (m *Machine) Dispatch(a Action) error {
	start := time.Now()
	if a == nil {
		err := errors.New(errors.ErrCodeInvalidInput, "nil action")
		observability.Calculator().OnTransition("", time.Since(start), err)
		return err
	}

	m.mu.Lock()
	next := m.state
	if err := a.apply(&next, m.defaults); err != nil {
		m.mu.Unlock()
		m.logger.Debug("transition rejected", "action", a.Name(), "err", err)
		observability.Calculator().OnTransition(a.Name(), time.Since(start), err)
		return err
	}
	m.commitShadows(&next)
	m.state = next
	m.recompute()
	snap := Snapshot{State: m.state, Derived: m.derived}
	subs := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Debug("transition", "action", a.Name())
	observability.Calculator().OnTransition(a.Name(), time.Since(start), nil)

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Subscribe registers fn to receive a Snapshot after every accepted
// transition. The returned function removes the subscription.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// State returns a copy of the current document.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Defaults returns the document ResetToDefaults restores.
func (m *Machine) Defaults() State { return m.defaults }

// Dimensions returns the resolved, oriented paper and ratio.
func (m *Machine) Dimensions() paper.Dimensions { return m.Snapshot().Derived.Dimensions }

// Geometry returns the solved print geometry.
func (m *Machine) Geometry() geometry.Result { return m.Snapshot().Derived.Geometry }

// Warnings returns the current warning set.
func (m *Machine) Warnings() warnings.Set { return m.Snapshot().Derived.Warnings }

// Snapshot returns the current State and derived values.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Derived: m.derived}
}

// Resolver returns the machine's dimension resolver.
func (m *Machine) Resolver() *paper.Resolver { return m.resolver }

// commitShadows promotes complete, in-range text and border values to their
// last-valid shadows.
func (m *Machine) commitShadows(s *State) {
	commitText(s.CustomPaperWidth, &s.LastValidCustomPaperWidth)
	commitText(s.CustomPaperHeight, &s.LastValidCustomPaperHeight)
	commitText(s.CustomAspectWidth, &s.LastValidCustomAspectWidth)
	commitText(s.CustomAspectHeight, &s.LastValidCustomAspectHeight)

	// Shadows restored from storage may be junk; fall back to the defaults.
	repairShadow(&s.LastValidCustomPaperWidth, m.defaults.LastValidCustomPaperWidth)
	repairShadow(&s.LastValidCustomPaperHeight, m.defaults.LastValidCustomPaperHeight)
	repairShadow(&s.LastValidCustomAspectWidth, m.defaults.LastValidCustomAspectWidth)
	repairShadow(&s.LastValidCustomAspectHeight, m.defaults.LastValidCustomAspectHeight)

	dims := m.resolver.Resolve(s.ResolveInput())
	if warnings.BorderUsable(s.MinBorder, dims.Paper) {
		s.LastValidMinBorder = s.MinBorder
	}
	if !warnings.BorderUsable(s.LastValidMinBorder, dims.Paper) {
		s.LastValidMinBorder = m.fallbackBorder(dims.Paper)
	}
}

// fallbackBorder is the default border when it fits p, else the largest
// 1/16in step that still leaves a print.
func (m *Machine) fallbackBorder(p paper.Size) float64 {
	if warnings.BorderUsable(m.defaults.LastValidMinBorder, p) {
		return m.defaults.LastValidMinBorder
	}
	return math.Max(0, math.Ceil(p.Min()/2/borderStep)*borderStep-borderStep)
}

func commitText(raw string, shadow *float64) {
	v, ok := ParseNumber(raw)
	if !ok || errors.ValidateDimension("dimension", v) != nil {
		return
	}
	*shadow = v
}

func repairShadow(shadow *float64, fallback float64) {
	if errors.ValidateDimension("dimension", *shadow) != nil {
		*shadow = fallback
	}
}

// recompute refreshes the derived values unless the memo key is unchanged.
func (m *Machine) recompute() {
	s := m.state
	key := memoKey{
		resolve:      s.ResolveInput(),
		typedBorder:  s.MinBorder,
		border:       s.LastValidMinBorder,
		enableOffset: s.EnableOffset,
		offsetX:      s.HorizontalOffset,
		offsetY:      s.VerticalOffset,
		ignoreBorder: s.IgnoreMinBorder,
	}
	if m.hasMemo && key == m.memo {
		observability.Calculator().OnMemo(true)
		return
	}
	observability.Calculator().OnMemo(false)

	dims := m.resolver.Resolve(key.resolve)

	start := time.Now()
	res := geometry.Solve(geometry.Input{
		Paper:            dims.Paper,
		Ratio:            dims.Ratio,
		MinBorder:        key.border,
		EnableOffset:     key.enableOffset,
		HorizontalOffset: key.offsetX,
		VerticalOffset:   key.offsetY,
		IgnoreMinBorder:  key.ignoreBorder,
	}, m.solver)
	observability.Calculator().OnSolve(time.Since(start), res.SearchUsed)

	m.derived = Derived{
		Dimensions: dims,
		Geometry:   res,
		Warnings: warnings.Evaluate(warnings.Input{
			MinBorder:       key.typedBorder,
			IgnoreMinBorder: key.ignoreBorder,
			Paper:           dims.Paper,
			IsCustomPaper:   s.PaperSize == paper.Custom,
			Result:          res,
		}, m.easels),
	}
	m.memo = key
	m.hasMemo = true
}
