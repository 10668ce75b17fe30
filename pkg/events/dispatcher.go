package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

var ErrDispatcherStopped = errors.New("event dispatcher stopped")

type deliver struct {
	event Event
}

// sinkActor fans every event out to the sinks in order. A failing sink is
// logged and does not stop the others.
type sinkActor struct {
	sinks   []Sink
	timeout time.Duration
	logger  *zap.Logger
}

func (a *sinkActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *deliver:
		for _, sink := range a.sinks {
			sctx, cancel := context.WithTimeout(context.Background(), a.timeout)
			if err := sink.Handle(sctx, msg.event); err != nil {
				a.logger.Error("Event sink failed",
					zap.String("type", msg.event.Type()),
					zap.String("key", msg.event.Key()),
					zap.Error(err))
			}
			cancel()
		}

	case *actor.Started:
		a.logger.Info("Event actor started", zap.Int("sinks", len(a.sinks)))

	case *actor.Stopped:
		a.logger.Info("Event actor stopped")
	}
}

// ActorDispatcher queues events on a protoactor mailbox so requests return
// before the sinks run.
type ActorDispatcher struct {
	mu     sync.RWMutex
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewActorDispatcher(logger *zap.Logger, sinks ...Sink) (*ActorDispatcher, error) {
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &sinkActor{sinks: sinks, timeout: 5 * time.Second, logger: logger.Named("event-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "event-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn event actor: %w", err)
	}
	return &ActorDispatcher{system: system, pid: pid, logger: logger}, nil
}

func (d *ActorDispatcher) Dispatch(_ context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pid == nil {
		return ErrDispatcherStopped
	}
	d.system.Root.Send(d.pid, &deliver{event: event})
	return nil
}

// Close drains queued events and stops the actor.
func (d *ActorDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pid == nil {
		return nil
	}
	err := d.system.Root.PoisonFuture(d.pid).Wait()
	d.pid = nil
	return err
}
