package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/channel"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

const reconnectDelay = time.Second

type redisEventListener struct {
	logger      *logrus.Logger
	cache       Client
	subscribers map[reflect.Type][]interface{}
	registry    map[string]reflect.Type
}

func NewRedisEventListener(
	logger *logrus.Logger,
	cache Client,
	registry map[string]reflect.Type,
) EventListener {
	return &redisEventListener{
		logger:      logger,
		cache:       cache,
		subscribers: make(map[reflect.Type][]interface{}),
		registry:    registry,
	}
}

func RegisterEventSubscriber[T event.Event](l EventListener, subscriber EventSubscriber[T]) {
	var evt T
	l.Register(reflect.TypeOf(evt), subscriber)
}

// Register must be called before Listen.
func (r *redisEventListener) Register(eventType reflect.Type, subscriber interface{}) {
	r.subscribers[eventType] = append(r.subscribers[eventType], subscriber)
}

// Listen blocks until ctx is done, resubscribing after every disconnect.
func (r *redisEventListener) Listen(ctx context.Context, channels ...channel.Channel) {
	channelNames := make([]string, 0, len(channels))
	for _, ch := range channels {
		channelNames = append(channelNames, string(ch))
	}

	for {
		r.consume(ctx, channelNames)
		if ctx.Err() != nil {
			r.logger.Info("redis pubsub listener shutting down")
			return
		}
		r.logger.WithField("retry_in", reconnectDelay.String()).Warn("redis pubsub disconnected, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (r *redisEventListener) consume(ctx context.Context, channelNames []string) {
	pubSub := r.cache.RedisClient().Subscribe(ctx, channelNames...)
	defer func() { _ = pubSub.Close() }()

	r.logger.WithField("channels", channelNames).Debug("redis pubsub connected")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = pubSub.Close()
		case <-stop:
		}
	}()

	for msg := range pubSub.Channel() {
		if ctx.Err() != nil {
			return
		}
		r.HandleMessage(ctx, msg.Payload)
	}
}

func (r *redisEventListener) HandleMessage(ctx context.Context, payload string) {
	var envelope RedisMessage
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		r.logger.WithError(err).Error("error decoding redis message")
		return
	}

	concreteType, ok := r.registry[envelope.Type]
	if !ok {
		r.logger.WithError(fmt.Errorf("unknown event type: %s", envelope.Type)).Error("error getting event type")
		return
	}

	eventPtr := reflect.New(concreteType)
	if err := json.Unmarshal(envelope.Event, eventPtr.Interface()); err != nil {
		r.logger.WithError(err).Error("error unmarshalling event data into concrete type")
		return
	}

	r.dispatch(ctx, concreteType, eventPtr.Elem())
}

func (r *redisEventListener) dispatch(ctx context.Context, eventType reflect.Type, ev reflect.Value) {
	for _, sub := range r.subscribers[eventType] {
		method := reflect.ValueOf(sub).MethodByName("OnEvent")
		if !method.IsValid() {
			r.logger.WithField("event", eventType.Name()).Debug("subscriber does not implement OnEvent")
			continue
		}
		results := method.Call([]reflect.Value{reflect.ValueOf(ctx), ev})
		if len(results) == 0 || results[0].IsNil() {
			continue
		}
		if err, ok := results[0].Interface().(error); ok {
			r.logger.WithError(err).WithField("event", eventType.Name()).Error("error executing subscriber")
		}
	}
}
