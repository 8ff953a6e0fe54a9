package color

import (
	"context"
	"sync"

	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/metrics"
	"github.com/amterp/memmap/internal/model"
)

// StateStore persists the engine's assignment map and cursor.
type StateStore interface {
	// LoadState returns the stored state. A missing record is not an error:
	// it yields an empty state with HasCursor false.
	LoadState(ctx context.Context) (*model.ColorState, error)
	// SaveState rewrites the stored state in full.
	SaveState(ctx context.Context, state model.ColorState) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithStateStore sets where assignments are persisted. Without one the
// engine is memory-only.
func WithStateStore(store StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLogger sets the logger used for persistence failures and assignments.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// WithDefaultColor overrides the color returned for unassigned identities.
func WithDefaultColor(color string) Option {
	return func(e *Engine) {
		if color != "" {
			e.defaultColor = color
		}
	}
}

// Engine assigns each identity a color from a fixed palette, choosing the
// unused color farthest from all colors already handed out. Once every
// palette color is in use it cycles through the palette in order.
//
// An identity keeps its color for the lifetime of the assignment map.
// Selection and mutation happen under one mutex, so concurrent Assign calls
// never observe each other's intermediate state. Durable writes happen
// after the lock is released and are serialized separately; a snapshot
// older than the last one written is dropped.
type Engine struct {
	palette      Palette
	defaultColor string
	store        StateStore
	logger       logging.Logger
	metrics      metrics.Collector

	mu          sync.Mutex
	assignments map[string]string
	cursor      int
	generation  uint64

	saveMu   sync.Mutex
	savedGen uint64
}

// NewEngine creates an engine with an empty assignment map.
// Call Restore to load previously persisted assignments.
func NewEngine(palette Palette, opts ...Option) *Engine {
	e := &Engine{
		palette:      palette,
		defaultColor: DefaultColor,
		logger:       logging.NewNop(),
		metrics:      metrics.NewNop(),
		assignments:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assign returns the color for identity, assigning one if needed.
//
// A new assignment is written to the state store before Assign returns.
// Write failures are logged and counted but never surface: the in-memory
// assignment stays authoritative and the next successful write reconciles.
// An empty identity gets the default color and is not recorded.
func (e *Engine) Assign(ctx context.Context, identity string) string {
	if identity == "" {
		e.logger.Warn("color requested for empty identity")
		return e.defaultColor
	}

	e.mu.Lock()
	if existing, ok := e.assignments[identity]; ok {
		e.mu.Unlock()
		e.metrics.RecordAssignment(metrics.KindReused)
		return existing
	}

	selected, kind := e.selectLocked()
	e.assignments[identity] = selected
	e.generation++
	gen := e.generation
	state := e.snapshotLocked()
	e.metrics.SetAssignedIdentities(len(state.Assignments))
	e.mu.Unlock()

	e.metrics.RecordAssignment(kind)
	e.logger.Debug("assigned color",
		"identity", identity,
		"color", selected,
		"kind", kind,
		"assigned", len(state.Assignments),
		"palette", e.palette.Len())

	if err := e.persist(ctx, state, gen, false); err != nil {
		e.logger.Warn("failed to persist color assignment",
			"identity", identity,
			"error", err)
	}
	return selected
}

// selectLocked picks the color for a new identity and advances the cursor.
// Callers must hold e.mu.
func (e *Engine) selectLocked() (string, string) {
	n := e.palette.Len()

	if len(e.assignments) == 0 {
		e.cursor = 1
		return e.palette.At(0), metrics.KindFirst
	}

	used := make(map[string]bool, len(e.assignments))
	for _, c := range e.assignments {
		used[c] = true
	}

	if len(used) < n {
		assigned := make([]string, 0, len(used))
		for c := range used {
			assigned = append(assigned, c)
		}
		parsed := parseAll(assigned)

		best := -1
		bestDistance := -1.0
		for i := 0; i < n; i++ {
			if used[e.palette.At(i)] {
				continue
			}
			// Strictly greater keeps the first candidate on ties.
			if d := e.palette.minDistance(i, parsed); d > bestDistance {
				bestDistance = d
				best = i
			}
		}
		if best >= 0 {
			e.cursor++
			return e.palette.At(best), metrics.KindFarthest
		}
		// Every palette color is taken even though fewer distinct colors
		// than the palette size are in use: some stored colors aren't
		// palette colors. Fall back to cycling.
	}

	selected := e.palette.At(e.cursor % n)
	e.cursor++
	return selected, metrics.KindCycled
}

// Color returns the color assigned to identity, or the default color.
func (e *Engine) Color(identity string) string {
	if c, ok := e.Lookup(identity); ok {
		return c
	}
	return e.defaultColor
}

// Lookup returns the color assigned to identity and whether one exists.
func (e *Engine) Lookup(identity string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.assignments[identity]
	return c, ok
}

// Len returns the number of assigned identities.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.assignments)
}

// Palette returns the engine's palette.
func (e *Engine) Palette() Palette {
	return e.palette
}

// DefaultColor returns the color used for unassigned identities.
func (e *Engine) DefaultColor() string {
	return e.defaultColor
}

// Snapshot returns a copy of the current assignment map and cursor.
func (e *Engine) Snapshot() model.ColorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() model.ColorState {
	state := model.ColorState{
		Assignments: make(map[string]string, len(e.assignments)),
		Cursor:      e.cursor,
		HasCursor:   true,
	}
	for k, v := range e.assignments {
		state.Assignments[k] = v
	}
	return state
}

// Restore replaces the in-memory state with the persisted one.
//
// The cached state is read from the state store; a load failure is logged
// and treated as no prior assignments. Colors in authoritative (usually the
// contributor records) override cached ones for the same identity. The
// cursor is the cached cursor, raised to at least the number of
// assignments. Restore does not write.
func (e *Engine) Restore(ctx context.Context, authoritative map[string]string) {
	var cached *model.ColorState
	if e.store != nil {
		state, err := e.store.LoadState(ctx)
		if err != nil {
			e.metrics.RecordPersistFailure("load")
			e.logger.Warn("failed to load color state, starting fresh", "error", err)
		} else {
			cached = state
		}
	}

	assignments := make(map[string]string)
	cursor := 0
	fromCache := 0
	if cached != nil {
		for id, c := range cached.Assignments {
			if id == "" || c == "" {
				continue
			}
			assignments[id] = c
			fromCache++
		}
		if cached.HasCursor {
			cursor = cached.Cursor
		}
	}

	overridden := 0
	for id, c := range authoritative {
		if id == "" || c == "" {
			continue
		}
		if prev, ok := assignments[id]; ok && prev != c {
			overridden++
		}
		assignments[id] = c
	}
	if cursor < len(assignments) {
		cursor = len(assignments)
	}

	e.mu.Lock()
	e.assignments = assignments
	e.cursor = cursor
	e.generation++
	e.mu.Unlock()

	e.metrics.SetAssignedIdentities(len(assignments))
	e.logger.Info("color assignments restored",
		"assigned", len(assignments),
		"cached", fromCache,
		"authoritative", len(authoritative),
		"overridden", overridden,
		"cursor", cursor)
}

// Replace swaps in a complete assignment map and cursor, then persists it.
// Used when colors are reassigned wholesale. Unlike Assign, the write
// error is returned.
func (e *Engine) Replace(ctx context.Context, assignments map[string]string, cursor int) error {
	next := make(map[string]string, len(assignments))
	for id, c := range assignments {
		if id != "" && c != "" {
			next[id] = c
		}
	}
	if cursor < 0 {
		cursor = 0
	}

	e.mu.Lock()
	e.assignments = next
	e.cursor = cursor
	e.generation++
	gen := e.generation
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.metrics.SetAssignedIdentities(len(next))
	return e.persist(ctx, state, gen, false)
}

// Adopt merges externally stored colors into the assignment map, replacing
// the engine's color for any identity present in colors. The cursor is
// raised to at least the number of assignments. Returns the write error.
func (e *Engine) Adopt(ctx context.Context, colors map[string]string) error {
	e.mu.Lock()
	changed := false
	for id, c := range colors {
		if id == "" || c == "" || e.assignments[id] == c {
			continue
		}
		e.assignments[id] = c
		changed = true
	}
	if !changed {
		e.mu.Unlock()
		return nil
	}
	if e.cursor < len(e.assignments) {
		e.cursor = len(e.assignments)
	}
	e.generation++
	gen := e.generation
	state := e.snapshotLocked()
	e.metrics.SetAssignedIdentities(len(state.Assignments))
	e.mu.Unlock()

	return e.persist(ctx, state, gen, false)
}

// Flush writes the current state unconditionally. Intended for shutdown.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	gen := e.generation
	state := e.snapshotLocked()
	e.mu.Unlock()

	return e.persist(ctx, state, gen, true)
}

// persist writes state if it is newer than the last written snapshot.
// force writes even when an equal or newer generation was already saved.
func (e *Engine) persist(ctx context.Context, state model.ColorState, gen uint64, force bool) error {
	if e.store == nil {
		return nil
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if !force && gen <= e.savedGen {
		return nil
	}
	if err := e.store.SaveState(ctx, state); err != nil {
		e.metrics.RecordPersistFailure("save")
		return err
	}
	if gen > e.savedGen {
		e.savedGen = gen
	}
	return nil
}
