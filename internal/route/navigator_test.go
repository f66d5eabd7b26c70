package route

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newDefaultNavigator(t *testing.T, opts ...Option) *Navigator {
	t.Helper()
	n := NewNavigator(opts...)
	require.NoError(t, n.Register(DefaultLinks()...))
	return n
}

// recorder collects navigation events.
type recorder struct {
	mu     sync.Mutex
	events []NavigationEvent
}

func (r *recorder) OnNavigation(_ context.Context, ev NavigationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func TestNavigator_Test1WritesResult(t *testing.T) {
	n := newDefaultNavigator(t)

	require.NoError(t, n.SelectLink(context.Background(), LabelTest1))

	assert.Equal(t, Test1Result, n.Result())
	assert.Equal(t, LabelTest1, n.Current())
}

func TestNavigator_NavigatingHomeClearsResult(t *testing.T) {
	n := newDefaultNavigator(t)
	ctx := context.Background()

	require.NoError(t, n.SelectLink(ctx, LabelTest1))
	require.NoError(t, n.SelectLink(ctx, LabelHome))

	assert.Equal(t, "", n.Result())
	assert.Equal(t, LabelHome, n.Current())
}

func TestNavigator_RepeatedCyclesDoNotAccumulate(t *testing.T) {
	for _, cycles := range []int{1, 2, 5, 20} {
		n := newDefaultNavigator(t)
		ctx := context.Background()
		require.NoError(t, n.SelectLink(ctx, LabelTest1))
		for i := 0; i < cycles; i++ {
			require.NoError(t, n.SelectLink(ctx, LabelTest1))
			require.NoError(t, n.SelectLink(ctx, LabelHome))
		}
		assert.Equal(t, "", n.Result(), "after %d cycles", cycles)
	}
}

func TestNavigator_ReselectingSameLinkRemounts(t *testing.T) {
	var mounts, cleanups int
	n := NewNavigator()
	require.NoError(t, n.Register(Link{Label: "counter", Component: func(mc *MountContext) error {
		mounts++
		return mc.OnCleanup(func() { cleanups++ })
	}}))
	ctx := context.Background()

	require.NoError(t, n.SelectLink(ctx, "counter"))
	require.NoError(t, n.SelectLink(ctx, "counter"))

	assert.Equal(t, 2, mounts)
	assert.Equal(t, 1, cleanups)
}

func TestNavigator_CleanupCompletesBeforeMount(t *testing.T) {
	var order []string
	n := NewNavigator()
	require.NoError(t, n.Register(
		Link{Label: "a", Component: func(mc *MountContext) error {
			order = append(order, "mount a")
			if err := mc.OnCleanup(func() { order = append(order, "cleanup a1") }); err != nil {
				return err
			}
			return mc.OnCleanup(func() { order = append(order, "cleanup a2") })
		}},
		Link{Label: "b", Component: func(mc *MountContext) error {
			order = append(order, "mount b")
			return nil
		}},
	))
	ctx := context.Background()

	require.NoError(t, n.SelectLink(ctx, "a"))
	require.NoError(t, n.SelectLink(ctx, "b"))

	want := []string{"mount a", "cleanup a2", "cleanup a1", "mount b"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigator_UnknownLinkLeavesStateAlone(t *testing.T) {
	n := newDefaultNavigator(t)
	ctx := context.Background()
	require.NoError(t, n.SelectLink(ctx, LabelTest1))

	err := n.SelectLink(ctx, "nope")

	assert.ErrorIs(t, err, ErrUnknownLink)
	assert.Equal(t, Test1Result, n.Result())
	assert.Equal(t, LabelTest1, n.Current())
}

func TestNavigator_CanceledContextLeavesStateAlone(t *testing.T) {
	n := newDefaultNavigator(t)
	require.NoError(t, n.SelectLink(context.Background(), LabelTest1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SelectLink(ctx, LabelHome)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Test1Result, n.Result())
}

func TestNavigator_FailedMountCleansPartialWrites(t *testing.T) {
	boom := errors.New("boom")
	n := newDefaultNavigator(t)
	require.NoError(t, n.Register(Link{Label: "broken", Component: func(mc *MountContext) error {
		if err := mc.Write("partial"); err != nil {
			return err
		}
		return boom
	}}))
	ctx := context.Background()
	require.NoError(t, n.SelectLink(ctx, LabelTest1))

	err := n.SelectLink(ctx, "broken")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", n.Result())
	assert.Equal(t, "", n.Current())
}

func TestNavigator_Register(t *testing.T) {
	n := newDefaultNavigator(t)

	err := n.Register(Link{Label: LabelHome, Component: Home})
	assert.ErrorIs(t, err, ErrDuplicateLink)

	err = n.Register(Link{Label: "", Component: Home})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	err = n.Register(Link{Label: "x", Component: Home}, Link{Label: "x", Component: Home})
	assert.ErrorIs(t, err, ErrDuplicateLink)

	err = n.Register(Link{Label: "nil"})
	assert.Error(t, err)

	labels := make([]string, 0)
	for _, l := range n.Links() {
		labels = append(labels, l.Label)
	}
	assert.Equal(t, []string{LabelTest1, LabelHome}, labels)
}

func TestNavigator_Back(t *testing.T) {
	n := newDefaultNavigator(t, WithHistoryLimit(2))
	ctx := context.Background()

	assert.ErrorIs(t, n.Back(ctx), ErrNoHistory)

	require.NoError(t, n.SelectLink(ctx, LabelHome))
	require.NoError(t, n.SelectLink(ctx, LabelTest1))
	require.NoError(t, n.SelectLink(ctx, LabelHome))
	assert.Equal(t, []string{LabelHome, LabelTest1}, n.History())

	require.NoError(t, n.Back(ctx))
	assert.Equal(t, LabelTest1, n.Current())
	assert.Equal(t, Test1Result, n.Result())
	assert.Equal(t, []string{LabelHome}, n.History())

	require.NoError(t, n.Back(ctx))
	assert.Equal(t, LabelHome, n.Current())
	assert.Equal(t, "", n.Result())
}

func TestNavigator_HistoryLimit(t *testing.T) {
	n := newDefaultNavigator(t, WithHistoryLimit(2))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, n.SelectLink(ctx, LabelTest1))
		require.NoError(t, n.SelectLink(ctx, LabelHome))
	}
	assert.Len(t, n.History(), 2)
}

func TestNavigator_Snapshot(t *testing.T) {
	n := newDefaultNavigator(t)
	current, result := n.Snapshot()
	assert.Equal(t, "", current)
	assert.Equal(t, "", result)

	require.NoError(t, n.SelectLink(context.Background(), LabelTest1))
	current, result = n.Snapshot()
	assert.Equal(t, LabelTest1, current)
	assert.Equal(t, Test1Result, result)
}

func TestNavigator_SnapshotIsConsistentUnderConcurrentNavigation(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := newDefaultNavigator(t)
	ctx := context.Background()
	require.NoError(t, n.SelectLink(ctx, LabelHome))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			label := LabelTest1
			if i%2 == 1 {
				label = LabelHome
			}
			assert.NoError(t, n.SelectLink(ctx, label))
		}
		close(done)
	}()

	want := map[string]string{LabelTest1: Test1Result, LabelHome: ""}
	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		current, result := n.Snapshot()
		if result != want[current] {
			t.Fatalf("snapshot paired current %q with result %q", current, result)
		}
	}
}

func TestNavigator_Close(t *testing.T) {
	n := newDefaultNavigator(t)
	require.NoError(t, n.SelectLink(context.Background(), LabelTest1))

	n.Close()
	n.Close()

	assert.Equal(t, "", n.Result())
	assert.Equal(t, "", n.Current())
}

func TestNavigator_ObserverEvents(t *testing.T) {
	rec := &recorder{}
	n := newDefaultNavigator(t, WithObserver(rec))
	ctx := context.Background()

	require.NoError(t, n.SelectLink(ctx, LabelTest1))
	require.NoError(t, n.SelectLink(ctx, LabelHome))

	want := []EventKind{
		EventNavigateStart, EventMount, EventNavigateEnd,
		EventNavigateStart, EventUnmount, EventMount, EventNavigateEnd,
	}
	assert.Equal(t, want, rec.kinds())

	unmount := rec.events[4]
	assert.Equal(t, uint64(2), unmount.Seq)
	assert.Equal(t, LabelTest1, unmount.From)
	assert.Equal(t, 1, unmount.Cleanups)
	assert.Equal(t, Test1Result, rec.events[2].Result)
	assert.Equal(t, "", rec.events[6].Result)
}

func TestNavigator_ObserverSeesFailure(t *testing.T) {
	rec := &recorder{}
	n := NewNavigator(WithObserver(rec))
	require.NoError(t, n.Register(Link{Label: "broken", Component: func(*MountContext) error {
		return errors.New("nope")
	}}))

	require.Error(t, n.SelectLink(context.Background(), "broken"))

	assert.Equal(t, []EventKind{EventNavigateStart, EventNavigateFailed}, rec.kinds())
}

func TestNavigator_ConcurrentNavigationIsSerialized(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := newDefaultNavigator(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = n.SelectLink(ctx, LabelTest1)
			_ = n.SelectLink(ctx, LabelHome)
		}()
	}
	wg.Wait()

	require.NoError(t, n.SelectLink(ctx, LabelHome))
	assert.Equal(t, "", n.Result())
}
