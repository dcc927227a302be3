package sim

// HookPos names a point at which hooks run, such as before an event is
// handled or after a message is sent.
type HookPos struct {
	Name string
}

// HookCtx describes one hook invocation. Item is the thing the position is
// about (an event, a message, a task) and Detail carries anything extra.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is anything hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// A Hook is called at every hook position of the Hookable it is attached to.
// It filters the positions it cares about itself.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps the hook list for embedding types.
type HookableBase struct {
	hooks []Hook
}

func (h *HookableBase) AcceptHook(hook Hook) { h.hooks = append(h.hooks, hook) }
func (h *HookableBase) NumHooks() int { return len(h.hooks) }
func (h *HookableBase) Hooks() []Hook { return h.hooks }

// InvokeHook calls the hooks in the order they were attached.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
