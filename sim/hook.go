// Package sim provides the plumbing shared by the simulated components: hooks
// that observe components, ID generation and logging.
package sim

import "sync"

// HookPos names a point in a component where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx is what a hook receives. Domain is the component that fired the
// hook. Item is the main object of the event and Detail carries extra
// information whose type depends on Pos.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is a component that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
}

// Hook observes a Hookable component.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps the hooks of a component. Hooks may be attached while
// other goroutines invoke them.
type HookableBase struct {
	lock  sync.RWMutex
	hooks []Hook
}

// NewHookableBase creates a HookableBase with no hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook appends a hook. Hooks run in the order they were accepted.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of hooks attached.
func (h *HookableBase) NumHooks() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.hooks)
}

// InvokeHook calls every hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.lock.RLock()
	hooks := h.hooks
	h.lock.RUnlock()

	for _, hook := range hooks {
		hook.Func(ctx)
	}
}
