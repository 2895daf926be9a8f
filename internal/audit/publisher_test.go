package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "garagehub/pkg/domain"
)

func TestPublisherStampsTimestamp(t *testing.T) {
	store := NewMemoryStore()
	expertID := id.ExpertID(uuid.New())

	require.NoError(t, NewPublisher(store).Emit(context.Background(), Event{ExpertID: expertID, Action: ActionSubmitted}))

	events, err := store.ListByExpert(context.Background(), expertID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, ActionSubmitted, events[0].Action)
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Emit(ctx, Event{Action: ActionApproved}))
	err := q.Emit(ctx, Event{Action: ActionRejected})

	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), q.Dropped())
}

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestWorker(t *testing.T) {
	t.Run("delivers queued events to the sink", func(t *testing.T) {
		store := NewMemoryStore()
		q := NewQueue(8)
		expertID := id.ExpertID(uuid.New())
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- NewWorker(store, q.Inbox(), nil).Run(ctx) }()

		require.NoError(t, q.Emit(ctx, Event{ExpertID: expertID, Action: ActionDocumentUploaded}))
		require.NoError(t, q.Emit(ctx, Event{ExpertID: expertID, Action: ActionSubmitted}))

		assert.Eventually(t, func() bool {
			events, _ := store.ListByExpert(context.Background(), expertID)
			return len(events) == 2
		}, time.Second, 10*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("drains buffered events on shutdown", func(t *testing.T) {
		store := NewMemoryStore()
		q := NewQueue(8)
		expertID := id.ExpertID(uuid.New())
		for range 3 {
			require.NoError(t, q.Emit(context.Background(), Event{ExpertID: expertID, Action: ActionProgressSaved}))
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewWorker(store, q.Inbox(), nil).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		events, _ := store.ListByExpert(context.Background(), expertID)
		// the select may deliver some events before observing cancellation;
		// either way nothing buffered is lost
		assert.Len(t, events, 3)
	})

	t.Run("keeps running when the sink fails", func(t *testing.T) {
		sink := &failingSink{}
		q := NewQueue(8)
		require.NoError(t, q.Emit(context.Background(), Event{Action: ActionApproved}))
		require.NoError(t, q.Emit(context.Background(), Event{Action: ActionRejected}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = NewWorker(sink, q.Inbox(), nil).Run(ctx)

		assert.Equal(t, 2, sink.calls)
	})
}
