package sim

// A Middleware is one stage of a component's per-cycle work, such as
// collecting responses or issuing requests.
type Middleware interface {
	// Tick returns true if the stage changed any state.
	Tick() bool
}

// MiddlewareHolder runs its middlewares in insertion order every tick. All
// of them run even if an earlier one made progress.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a stage.
func (h *MiddlewareHolder) AddMiddleware(m Middleware) {
	h.middlewares = append(h.middlewares, m)
}

// Middlewares returns the stages.
func (h *MiddlewareHolder) Middlewares() []Middleware {
	return h.middlewares
}

// Tick runs every stage once.
func (h *MiddlewareHolder) Tick() (madeProgress bool) {
	for _, m := range h.middlewares {
		madeProgress = m.Tick() || madeProgress
	}

	return madeProgress
}
