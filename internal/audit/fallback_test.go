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
	"garagehub/pkg/platform/circuit"
)

type flakySink struct {
	down  bool
	calls int
	store *MemoryStore
}

func (f *flakySink) Append(ctx context.Context, event Event) error {
	f.calls++
	if f.down {
		return errors.New("broker down")
	}
	return f.store.Append(ctx, event)
}

func TestFallbackSink(t *testing.T) {
	ctx := context.Background()
	expertID := id.ExpertID(uuid.New())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	primary := &flakySink{down: true, store: NewMemoryStore()}
	fallback := NewMemoryStore()
	breaker := circuit.New("audit", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }))
	sink := NewFallbackSink(primary, fallback, breaker, nil)

	// below the threshold the failure is returned to the worker
	assert.Error(t, sink.Append(ctx, Event{ExpertID: expertID, Action: ActionSubmitted}))

	// the failure that opens the breaker is diverted
	require.NoError(t, sink.Append(ctx, Event{ExpertID: expertID, Action: ActionApproved}))
	assert.True(t, breaker.IsOpen())

	// open breaker skips the primary entirely
	require.NoError(t, sink.Append(ctx, Event{ExpertID: expertID, Action: ActionRejected}))
	assert.Equal(t, 2, primary.calls)

	diverted, err := fallback.ListByExpert(ctx, expertID)
	require.NoError(t, err)
	assert.Len(t, diverted, 2)

	// after the cooldown a successful probe closes the breaker
	primary.down = false
	now = now.Add(time.Minute)
	require.NoError(t, sink.Append(ctx, Event{ExpertID: expertID, Action: ActionProgressSaved}))
	assert.False(t, breaker.IsOpen())

	delivered, err := primary.store.ListByExpert(ctx, expertID)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, ActionProgressSaved, delivered[0].Action)
}
