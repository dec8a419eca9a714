package cache

import (
	"context"
	"reflect"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/channel"
)

type EventListener interface {
	Listen(ctx context.Context, channels ...channel.Channel)
	Register(eventType reflect.Type, subscriber interface{})
	// HandleMessage decodes one pubsub payload and dispatches it.
	HandleMessage(ctx context.Context, payload string)
}
