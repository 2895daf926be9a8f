package audit

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrQueueFull is returned by Queue.Emit when the buffer has no room.
var ErrQueueFull = errors.New("audit queue is full")

// Publisher writes events straight to a sink.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}

// Queue is a non-blocking publisher. Events are buffered for a Worker; when
// the buffer is full the event is dropped and counted.
type Queue struct {
	events  chan Event
	dropped atomic.Int64
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{events: make(chan Event, capacity)}
}

func (q *Queue) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case q.events <- event:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Inbox is the receive side handed to a Worker.
func (q *Queue) Inbox() <-chan Event {
	return q.events
}

// Dropped returns the number of events lost to a full buffer.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
