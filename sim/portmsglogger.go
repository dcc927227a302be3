package sim

import (
	"log"
	"reflect"
)

// PortMsgLogger writes one line each time a message moves through a port.
// Hook it onto every port of interest.
type PortMsgLogger struct {
	logger *log.Logger
	timer  TimeTeller
}

// NewPortMsgLogger returns a PortMsgLogger stamping lines with the time told
// by timer.
func NewPortMsgLogger(logger *log.Logger, timer TimeTeller) *PortMsgLogger {
	return &PortMsgLogger{logger: logger, timer: timer}
}

// Func implements Hook.
func (h *PortMsgLogger) Func(ctx HookCtx) {
	msg, ok := ctx.Item.(Msg)
	if !ok {
		return
	}

	port, ok := ctx.Domain.(Port)
	if !ok {
		return
	}

	meta := msg.Meta()
	h.logger.Printf("%.10f,%s,%s,%s,%s,%s,%s",
		h.timer.CurrentTime(), port.Name(), ctx.Pos.Name,
		meta.Src, meta.Dst, reflect.TypeOf(msg), meta.ID)
}
