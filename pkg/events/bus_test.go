package events

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

func newTestBus() *Bus {
	return NewBus(time.Second, observability.NewLogger(observability.ErrorLevel, io.Discard), nil)
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := newTestBus()

	got := make(chan Event, 1)
	bus.Subscribe(TypeTaskCreated, func(ctx context.Context, e Event) error {
		got <- e
		return nil
	})

	bus.Publish(Event{Type: TypeTaskCreated, EntityID: "t1", BoardID: "b1"})

	select {
	case e := <-got:
		assert.Equal(t, "t1", e.EntityID)
		assert.Equal(t, "b1", e.BoardID)
		assert.False(t, e.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusTypeIsolation(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var taskEvents, boardEvents int
	bus.Subscribe(TypeTaskCreated, func(ctx context.Context, e Event) error {
		mu.Lock()
		taskEvents++
		mu.Unlock()
		return nil
	})
	bus.Subscribe(TypeBoardCreated, func(ctx context.Context, e Event) error {
		mu.Lock()
		boardEvents++
		mu.Unlock()
		return nil
	})

	bus.Publish(Event{Type: TypeTaskCreated, EntityID: "t1"})
	bus.Publish(Event{Type: TypeTaskCreated, EntityID: "t2"})
	require.NoError(t, bus.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, taskEvents)
	assert.Equal(t, 0, boardEvents)
}

func TestBusSubscribeAll(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var seen []Type
	bus.SubscribeAll(func(ctx context.Context, e Event) error {
		mu.Lock()
		seen = append(seen, e.Type)
		mu.Unlock()
		return nil
	})

	bus.Publish(Event{Type: TypeBoardCreated, EntityID: "b1"})
	bus.Publish(Event{Type: TypeShareChanged, EntityID: "s1"})
	require.NoError(t, bus.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []Type{TypeBoardCreated, TypeShareChanged}, seen)
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := newTestBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(TypeBoardDeleted, func(ctx context.Context, e Event) error {
		panic("handler bug")
	})
	bus.Subscribe(TypeBoardDeleted, func(ctx context.Context, e Event) error {
		delivered <- struct{}{}
		return nil
	})

	// The panic is contained; the sibling handler still runs and Close
	// still drains cleanly.
	bus.Publish(Event{Type: TypeBoardDeleted, EntityID: "b1"})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("sibling handler did not run")
	}
	require.NoError(t, bus.Close(context.Background()))
}

func TestBusPublishAfterCloseIsDropped(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var count int
	bus.Subscribe(TypeTaskUpdated, func(ctx context.Context, e Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	require.NoError(t, bus.Close(context.Background()))
	bus.Publish(Event{Type: TypeTaskUpdated, EntityID: "t1"})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestBusConcurrentPublishAndClose(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var delivered int
	bus.Subscribe(TypeTaskCreated, func(ctx context.Context, e Event) error {
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})

	// Publishers racing Close must either be counted before Close waits or
	// dropped entirely; neither outcome may trip the WaitGroup.
	var publishers sync.WaitGroup
	for i := 0; i < 20; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			bus.Publish(Event{Type: TypeTaskCreated, EntityID: "t1"})
		}()
	}

	require.NoError(t, bus.Close(context.Background()))
	publishers.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, delivered, 20)
}

func TestBusCloseHonorsDeadline(t *testing.T) {
	bus := newTestBus()

	release := make(chan struct{})
	bus.Subscribe(TypeTaskDeleted, func(ctx context.Context, e Event) error {
		<-release
		return nil
	})
	bus.Publish(Event{Type: TypeTaskDeleted, EntityID: "t1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, bus.Close(ctx))
	close(release)
}
