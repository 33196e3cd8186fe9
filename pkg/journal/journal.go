package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowkit/flowkit/pkg/workflow"
)

// Record is one journaled transition.
type Record struct {
	ID         string    `json:"id"`
	Field      string    `json:"field"`
	Transition string    `json:"transition"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Object     string    `json:"object"`
	Args       []any     `json:"args,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Filter narrows a List query. Zero fields match everything.
type Filter struct {
	Field      string
	Transition string
	Limit      int
}

// Store persists journal records. MemoryStore is the in-process
// implementation; a persistent collaborator implements this interface to
// store records elsewhere.
type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, f Filter) ([]Record, error)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// Recorder turns completed workflow transitions into journal records.
type Recorder struct {
	store Store
	now   func() time.Time
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record journals one transition log entry.
func (r *Recorder) Record(ctx context.Context, entry workflow.LogEntry) error {
	rec := Record{
		ID:         uuid.New().String(),
		Field:      entry.Field,
		Transition: entry.Transition.Name(),
		From:       entry.From.Name(),
		To:         entry.Transition.Target().Name(),
		Object:     fmt.Sprint(entry.Object),
		Args:       entry.Args,
		OccurredAt: r.now().UTC(),
	}
	if err := r.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("journal transition '%s': %w", rec.Transition, err)
	}
	return nil
}

// Hook adapts the recorder to the workflow transition-log extension point:
//
//	wf := workflow.MustNew(def, workflow.WithTransitionLog(recorder.Hook()))
func (r *Recorder) Hook() workflow.TransitionLogFunc {
	return r.Record
}

// List queries the underlying store.
func (r *Recorder) List(ctx context.Context, f Filter) ([]Record, error) {
	return r.store.List(ctx, f)
}
