package event

import "reflect"

type Event interface {
	Type() string
}

var (
	SessionUpdatedEventType = "SessionUpdatedEvent"
)

var Registry = map[string]reflect.Type{
	SessionUpdatedEventType: reflect.TypeOf(SessionUpdatedEvent{}),
}
