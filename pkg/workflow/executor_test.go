package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowkit/pkg/workflow"
)

func TestExecuteProtocol(t *testing.T) {
	t.Parallel()

	newBindings := func(t *testing.T, wf *workflow.Workflow) *workflow.Bindings[*document] {
		t.Helper()
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
				d.trace = append(d.trace, "impl")
				return "prepared", nil
			}).
			Check("allowed", func(ctx context.Context, d *document) (bool, error) {
				d.trace = append(d.trace, "check")
				return true, nil
			}, workflow.On("prepare")).
			Before("announce", func(ctx context.Context, d *document, args ...any) error {
				d.trace = append(d.trace, "before")
				return nil
			}, workflow.On("prepare")).
			OnLeave("leaving_init", func(ctx context.Context, d *document, args ...any) error {
				d.trace = append(d.trace, "on_leave")
				return nil
			}, workflow.On("init")).
			After("dispatch", func(ctx context.Context, d *document, result any, args ...any) error {
				d.trace = append(d.trace, "after")
				return nil
			}, workflow.On("prepare")).
			OnEnter("entering_ready", func(ctx context.Context, d *document, result any, args ...any) error {
				d.trace = append(d.trace, "on_enter")
				return nil
			}, workflow.On("ready")).
			Build()
		require.NoError(t, err)
		return bindings
	}

	t.Run("full phase order", func(t *testing.T) {
		t.Parallel()

		var logged []workflow.LogEntry
		wf := workflow.MustNew(docDefinition(), workflow.WithTransitionLog(
			func(ctx context.Context, entry workflow.LogEntry) error {
				logged = append(logged, entry)
				return nil
			}))
		bindings := newBindings(t, wf)

		doc := newDocument(wf)
		result, err := bindings.Exec(context.Background(), doc, "prepare", "arg1")
		require.NoError(t, err)
		assert.Equal(t, "prepared", result)
		assert.True(t, doc.status.Is("ready"))

		// before and on_leave share a phase (ties broken by name), as do
		// after and on_enter.
		assert.Equal(t, []string{"check", "before", "on_leave", "impl", "after", "on_enter"}, doc.trace)

		require.Len(t, logged, 1)
		assert.Equal(t, "status", logged[0].Field)
		assert.Equal(t, "prepare", logged[0].Transition.Name())
		assert.Equal(t, "init", logged[0].From.Name())
		assert.Equal(t, []any{"arg1"}, logged[0].Args)
		assert.Same(t, doc, logged[0].Object)
	})

	t.Run("unavailable transition aborts before hooks", func(t *testing.T) {
		t.Parallel()

		wf := workflow.MustNew(docDefinition())
		bindings := newBindings(t, wf)
		doc := newDocument(wf)

		_, err := bindings.Exec(context.Background(), doc, "activate")
		require.Error(t, err)
		assert.True(t, workflow.IsTransitionNotAvailableError(err))
		assert.True(t, errors.Is(err, workflow.ErrTransitionAborted))
		assert.Contains(t, err.Error(), "activate")
		assert.Contains(t, err.Error(), "init")

		assert.True(t, doc.status.Is("init"))
		assert.Empty(t, doc.trace)
	})
}

func TestExecuteFailures(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(docDefinition())

	t.Run("check veto forbids transition", func(t *testing.T) {
		t.Parallel()

		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Check("never", func(ctx context.Context, d *document) (bool, error) {
				return false, nil
			}, workflow.On("prepare")).
			Before("notify", func(ctx context.Context, d *document, args ...any) error {
				d.trace = append(d.trace, "before")
				return nil
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		_, err = bindings.Exec(context.Background(), doc, "prepare")
		require.Error(t, err)
		assert.True(t, workflow.IsTransitionForbiddenError(err))
		assert.True(t, errors.Is(err, workflow.ErrTransitionAborted))
		assert.Contains(t, err.Error(), "never")

		assert.True(t, doc.status.Is("init"))
		assert.Empty(t, doc.trace)
	})

	t.Run("check error propagates unchanged", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Check("broken", func(ctx context.Context, d *document) (bool, error) {
				return false, boom
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		_, err = bindings.Exec(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, workflow.ErrTransitionAborted))
		assert.True(t, doc.status.Is("init"))
	})

	t.Run("before hook error aborts without mutating", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		implCalled := false
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
				implCalled = true
				return nil, nil
			}).
			Before("explode", func(ctx context.Context, d *document, args ...any) error {
				return boom
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		_, err = bindings.Exec(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.False(t, implCalled)
		assert.True(t, doc.status.Is("init"))
	})

	t.Run("implementation error aborts without mutating", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
				return nil, boom
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		_, err = bindings.Exec(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.True(t, doc.status.Is("init"))
	})

	t.Run("after hook error propagates but state stays committed", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
				return "done", nil
			}).
			After("explode", func(ctx context.Context, d *document, result any, args ...any) error {
				return boom
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		result, err := bindings.Exec(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "done", result)
		assert.True(t, doc.status.Is("ready"))
	})

	t.Run("transition log error propagates after commit", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		logWf := workflow.MustNew(docDefinition(), workflow.WithTransitionLog(
			func(ctx context.Context, entry workflow.LogEntry) error { return boom }))
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", logWf, statusField).
			Build()
		require.NoError(t, err)

		doc := newDocument(logWf)
		_, err = bindings.Exec(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.True(t, doc.status.Is("ready"))
	})
}

func TestHookOrdering(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(docDefinition())

	record := func(name string) workflow.BeforeFunc[*document] {
		return func(ctx context.Context, d *document, args ...any) error {
			d.trace = append(d.trace, name)
			return nil
		}
	}

	// Priorities: b=10, d=0, a=-1, c=0. Expected: priority descending, then
	// registration name ascending within ties.
	bindings, err := workflow.NewBinder[*document]().
		AddField("status", wf, statusField).
		Before("b", record("b"), workflow.WithPriority(10)).
		Before("d", record("d")).
		Before("a", record("a"), workflow.WithPriority(-1)).
		Before("c", record("c")).
		Build()
	require.NoError(t, err)

	doc := newDocument(wf)
	_, err = bindings.Exec(context.Background(), doc, "prepare")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d", "a"}, doc.trace)
}

func TestIsAvailable(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(docDefinition())

	t.Run("reflects state compatibility", func(t *testing.T) {
		t.Parallel()

		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		ctx := context.Background()

		ok, err := bindings.IsAvailable(ctx, doc, "prepare")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = bindings.IsAvailable(ctx, doc, "activate")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reflects check veto", func(t *testing.T) {
		t.Parallel()

		allowed := false
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Check("gate", func(ctx context.Context, d *document) (bool, error) {
				return allowed, nil
			}, workflow.On("prepare")).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		ctx := context.Background()

		ok, err := bindings.IsAvailable(ctx, doc, "prepare")
		require.NoError(t, err)
		assert.False(t, ok)

		allowed = true
		ok, err = bindings.IsAvailable(ctx, doc, "prepare")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("check errors propagate", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Check("broken", func(ctx context.Context, d *document) (bool, error) {
				return false, boom
			}).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		ok, err := bindings.IsAvailable(context.Background(), doc, "prepare")
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
	})

	t.Run("no state is touched", func(t *testing.T) {
		t.Parallel()

		bindings, err := workflow.NewBinder[*document]().
			AddField("status", wf, statusField).
			Build()
		require.NoError(t, err)

		doc := newDocument(wf)
		_, err = bindings.IsAvailable(context.Background(), doc, "prepare")
		require.NoError(t, err)
		assert.True(t, doc.status.Is("init"))
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(docDefinition())

	var order []string
	outer := func(next workflow.CommitFunc[*document]) workflow.CommitFunc[*document] {
		return func(ctx context.Context, d *document, args ...any) (any, error) {
			order = append(order, "outer_in")
			result, err := next(ctx, d, args...)
			order = append(order, "outer_out")
			return result, err
		}
	}
	inner := func(next workflow.CommitFunc[*document]) workflow.CommitFunc[*document] {
		return func(ctx context.Context, d *document, args ...any) (any, error) {
			order = append(order, "inner_in")
			result, err := next(ctx, d, args...)
			order = append(order, "inner_out")
			return result, err
		}
	}

	bindings, err := workflow.NewBinder[*document]().
		AddField("status", wf, statusField).
		Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
			order = append(order, "impl")
			return nil, nil
		}).
		Use(outer).
		Use(inner).
		Build()
	require.NoError(t, err)

	doc := newDocument(wf)
	_, err = bindings.Exec(context.Background(), doc, "prepare")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer_in", "inner_in", "impl", "inner_out", "outer_out"}, order)
	assert.True(t, doc.status.Is("ready"))
}

func TestSelfLoopFiresLeaveAndEnter(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(workflow.Definition{
		States: []workflow.StateDef{{Name: "running"}},
		Transitions: []workflow.TransitionDef{
			{Name: "touch", From: workflow.SourceList{"running"}, To: "running"},
		},
		Initial: "running",
	})

	bindings, err := workflow.NewBinder[*document]().
		AddField("status", wf, statusField).
		OnLeave("leave", func(ctx context.Context, d *document, args ...any) error {
			d.trace = append(d.trace, "leave")
			return nil
		}, workflow.On("running")).
		OnEnter("enter", func(ctx context.Context, d *document, result any, args ...any) error {
			d.trace = append(d.trace, "enter")
			return nil
		}, workflow.On("running")).
		Build()
	require.NoError(t, err)

	doc := newDocument(wf)
	_, err = bindings.Exec(context.Background(), doc, "touch")
	require.NoError(t, err)
	assert.Equal(t, []string{"leave", "enter"}, doc.trace)
	assert.True(t, doc.status.Is("running"))
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	wf := workflow.MustNew(docDefinition())
	bindings, err := workflow.NewBinder[*document]().
		AddField("status", wf, statusField).
		Implement("prepare", func(ctx context.Context, d *document, args ...any) (any, error) {
			return "ok", nil
		}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	doc := newDocument(wf)
	assert.Equal(t, "init", doc.status.Get().Name())

	// activate is not available from init.
	_, err = bindings.Exec(ctx, doc, "activate")
	assert.True(t, workflow.IsTransitionNotAvailableError(err))

	result, err := bindings.Exec(ctx, doc, "prepare")
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, "ready", doc.status.Get().Name())

	_, err = bindings.Exec(ctx, doc, "cancel")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", doc.status.Get().Name())

	_, err = bindings.Exec(ctx, doc, "complete")
	assert.True(t, workflow.IsTransitionNotAvailableError(err))
	assert.Equal(t, "cancelled", doc.status.Get().Name())
}

type shipment struct {
	payment  *workflow.StateHolder
	delivery *workflow.StateHolder
	trace    []string
}

func TestTwoIndependentFields(t *testing.T) {
	t.Parallel()

	payments := workflow.MustNew(workflow.Definition{
		States: []workflow.StateDef{{Name: "pending"}, {Name: "paid"}},
		Transitions: []workflow.TransitionDef{
			{Name: "pay", From: workflow.SourceList{"pending"}, To: "paid"},
		},
		Initial: "pending",
	})
	deliveries := workflow.MustNew(workflow.Definition{
		States: []workflow.StateDef{{Name: "queued"}, {Name: "shipped"}},
		Transitions: []workflow.TransitionDef{
			{Name: "ship", From: workflow.SourceList{"queued"}, To: "shipped"},
		},
		Initial: "queued",
	})

	bindings, err := workflow.NewBinder[*shipment]().
		AddField("payment", payments, func(s *shipment) *workflow.StateHolder { return s.payment }).
		AddField("delivery", deliveries, func(s *shipment) *workflow.StateHolder { return s.delivery }).
		Before("payment_only", func(ctx context.Context, s *shipment, args ...any) error {
			s.trace = append(s.trace, "payment_hook")
			return nil
		}, workflow.ForField("payment")).
		Before("delivery_only", func(ctx context.Context, s *shipment, args ...any) error {
			s.trace = append(s.trace, "delivery_hook")
			return nil
		}, workflow.ForField("delivery")).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	s := &shipment{payment: payments.NewHolder(), delivery: deliveries.NewHolder()}

	_, err = bindings.Exec(ctx, s, "pay")
	require.NoError(t, err)
	assert.True(t, s.payment.Is("paid"))
	assert.True(t, s.delivery.Is("queued"))
	assert.Equal(t, []string{"payment_hook"}, s.trace)

	_, err = bindings.Exec(ctx, s, "ship")
	require.NoError(t, err)
	assert.True(t, s.delivery.Is("shipped"))
	assert.True(t, s.payment.Is("paid"))
	assert.Equal(t, []string{"payment_hook", "delivery_hook"}, s.trace)
}

func TestSharedTransitionNameNeedsField(t *testing.T) {
	t.Parallel()

	def := workflow.Definition{
		States: []workflow.StateDef{{Name: "off"}, {Name: "on"}},
		Transitions: []workflow.TransitionDef{
			{Name: "toggle", From: workflow.SourceList{"off"}, To: "on"},
		},
		Initial: "off",
	}
	first := workflow.MustNew(def)
	second := workflow.MustNew(def)

	bindings, err := workflow.NewBinder[*shipment]().
		AddField("payment", first, func(s *shipment) *workflow.StateHolder { return s.payment }).
		AddField("delivery", second, func(s *shipment) *workflow.StateHolder { return s.delivery }).
		Build()
	require.NoError(t, err)

	s := &shipment{payment: first.NewHolder(), delivery: second.NewHolder()}
	_, err = bindings.Exec(context.Background(), s, "toggle")
	require.Error(t, err)
	assert.True(t, workflow.IsDefinitionError(err))

	ex, err := bindings.Transition(s, "delivery", "toggle")
	require.NoError(t, err)
	_, err = ex.Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, s.delivery.Is("on"))
	assert.True(t, s.payment.Is("off"))
}
