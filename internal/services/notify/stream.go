package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/tharwatech/mahfaza/internal/common"
)

// LoadFunc produces the current snapshot for a stream.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Stream is a live snapshot subscription backed by broker topics. It sends
// one initial snapshot, then a full replacement snapshot after every change
// signal. Delivery coalesces to the newest snapshot: a consumer that falls
// behind skips intermediate states and only ever sees the latest one.
type Stream[T any] struct {
	updates chan T
	cancel  func()
	stop    context.CancelFunc

	closeOnce sync.Once
	done      chan struct{}
}

// NewStream opens a stream over the given topics. The load func is invoked
// once up front and again after each signal; load errors are logged and the
// previous snapshot stands until the next signal.
func NewStream[T any](ctx context.Context, broker *Broker, load LoadFunc[T], logger *common.Logger, topics ...string) (*Stream[T], error) {
	initial, err := load(ctx)
	if err != nil {
		return nil, err
	}

	signals, cancel := broker.Subscribe(topics...)

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s := &Stream[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
		stop:    stop,
		done:    make(chan struct{}),
	}
	s.push(initial)

	go s.run(runCtx, strings.Join(topics, ","), signals, load, logger)
	return s, nil
}

// Updates returns the snapshot channel. It is closed when the stream closes.
func (s *Stream[T]) Updates() <-chan T {
	return s.updates
}

// Close detaches from the broker and closes the updates channel.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.stop()
		<-s.done
		close(s.updates)
	})
}

func (s *Stream[T]) run(ctx context.Context, topic string, signals <-chan struct{}, load LoadFunc[T], logger *common.Logger) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn().Err(err).Str("topic", topic).Msg("Failed to reload stream snapshot")
				}
				continue
			}
			s.push(snapshot)
		}
	}
}

// push places the snapshot in the buffer, displacing any undelivered one.
func (s *Stream[T]) push(snapshot T) {
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
