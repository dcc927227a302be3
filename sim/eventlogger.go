package sim

import (
	"log"
	"reflect"
)

// EventLogger writes one line per handled event.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns an EventLogger that writes into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func implements Hook.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	target := "-"
	if n, ok := evt.Handler().(Named); ok {
		target = n.Name()
	}

	kind := "primary"
	if evt.IsSecondary() {
		kind = "secondary"
	}

	h.logger.Printf("%.10f,%s,%s,%s",
		evt.Time(), target, reflect.TypeOf(evt), kind)
}
