package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(calls *[]string, name string) Func {
	return func(ctx context.Context, ev *Event) error {
		*calls = append(*calls, name)
		return nil
	}
}

func TestInvokeRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.Add(Before, "*", recorder(&calls, "h1"))
	d.Add(Before, "chat/*", recorder(&calls, "h2"))
	d.Add(Before, "tasks/*", recorder(&calls, "h3"))

	err := d.Invoke(context.Background(), Before, &Event{Path: "chat/assistant"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, calls)
}

func TestInvokeKindsAreIndependent(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.Add(Before, "*", recorder(&calls, "before"))
	d.Add(After, "*", recorder(&calls, "after"))

	require.NoError(t, d.Invoke(context.Background(), Before, &Event{Path: "x"}))
	assert.Equal(t, []string{"before"}, calls)

	require.NoError(t, d.Invoke(context.Background(), After, &Event{Path: "x"}))
	assert.Equal(t, []string{"before", "after"}, calls)
}

func TestInvokeStopsAtFirstError(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	boom := errors.New("boom")
	d.Add(Before, "*", recorder(&calls, "h1"))
	d.Add(Before, "*", func(ctx context.Context, ev *Event) error { return boom })
	d.Add(Before, "*", recorder(&calls, "h3"))

	err := d.Invoke(context.Background(), Before, &Event{Path: "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `before hook "*"`)
	assert.Equal(t, []string{"h1"}, calls, "hooks after the failing one must not run")
}

func TestInvokeNoMatches(t *testing.T) {
	d := NewDispatcher()
	d.Add(Before, "chat/*", func(ctx context.Context, ev *Event) error {
		return errors.New("should not fire")
	})
	require.NoError(t, d.Invoke(context.Background(), Before, &Event{Path: "tasks/reminder"}))
}

func TestDuplicatePatternsCoexist(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.Add(After, "chat/*", recorder(&calls, "a"))
	d.Add(After, "chat/*", recorder(&calls, "b"))

	require.NoError(t, d.Invoke(context.Background(), After, &Event{Path: "chat/x"}))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestMatchingReturnsCopy(t *testing.T) {
	d := NewDispatcher()
	d.Add(Before, "*", func(ctx context.Context, ev *Event) error { return nil })

	fns := d.Matching(Before, "anything")
	require.Len(t, fns, 1)

	d.Add(Before, "*", func(ctx context.Context, ev *Event) error { return nil })
	assert.Len(t, fns, 1, "earlier result must not grow")
	assert.Len(t, d.Matching(Before, "anything"), 2)
}

func TestEventForwardedToCallbacks(t *testing.T) {
	d := NewDispatcher()
	type reqStub struct{ id int }
	var seen *Event
	d.Add(After, "docs/*", func(ctx context.Context, ev *Event) error {
		seen = ev
		return nil
	})

	ev := &Event{
		Path:     "docs/readme",
		Request:  &reqStub{id: 7},
		Document: map[string]any{"name": "readme"},
		Payload:  map[string]any{"name": "readme"},
	}
	require.NoError(t, d.Invoke(context.Background(), After, ev))
	require.Same(t, ev, seen)
	assert.Equal(t, 7, seen.Request.(*reqStub).id)
}

func TestAddConcurrentWithInvoke(t *testing.T) {
	d := NewDispatcher()
	d.Add(Before, "*", func(ctx context.Context, ev *Event) error { return nil })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Add(Before, fmt.Sprintf("p%d/*", n), func(ctx context.Context, ev *Event) error { return nil })
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Invoke(context.Background(), Before, &Event{Path: "p0/x"})
			}
		}()
	}
	wg.Wait()

	// the "*" hook plus the 100 "p0/*" hooks
	assert.Len(t, d.Matching(Before, "p0/x"), 101)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "before", Before.String())
	assert.Equal(t, "after", After.String())
}
