package configmanager

// Named extension points fired at defined lifecycle moments. Hooks are
// registered against a specific section's registry, never globally, so two
// trees in one process cannot leak callbacks into each other. Dispatch
// starts at the originating section and bubbles up through ancestors.
type HookName string

const (
	// HookNotFound fires when a path lookup misses. The first non-nil
	// return value ends dispatch: a Node substitutes for the failure, any
	// other value leaves the lookup failing. Callbacks that only observe
	// misses must return nil so later callbacks still run.
	HookNotFound HookName = "not_found"

	// HookItemAdded fires after an item is added to a section.
	HookItemAdded HookName = "item_added_to_section"

	// HookSectionAdded fires after a subsection is added to a section.
	HookSectionAdded HookName = "section_added_to_section"

	// HookValueChanged fires after every successful Item.Set. Change
	// tracking rides on this hook.
	HookValueChanged HookName = "item_value_changed"
)

// HookContext carries the fixed keyword contract passed to hook callbacks.
// Fields not relevant to a given hook are zero.
type HookContext struct {
	// Name of the subject relative to Section.
	Name string

	// Section on which the event originated.
	Section *Section

	// Node is the subject node, when one exists.
	Node Node

	// Item is the subject item for item events.
	Item *Item

	// Old/new values for item_value_changed. NotSet marks absent states.
	OldValue any
	NewValue any
	OldRaw   any
	NewRaw   any
}

// HookFunc is a hook callback. A non-nil return value stops dispatch and is
// returned to the firing site; return nil to let other callbacks run.
type HookFunc func(*HookContext) any

type hookEntry struct {
	id int64
	fn HookFunc
}

// Hooks is a section's hook registry.
type Hooks struct {
	section  *Section
	handlers map[HookName][]hookEntry
	nextID   int64
}

// Hooks returns the section's hook registry, creating it on first use.
func (s *Section) Hooks() *Hooks {
	if s.hooks == nil {
		s.hooks = &Hooks{section: s, handlers: make(map[HookName][]hookEntry)}
	}
	return s.hooks
}

// Register adds a callback for the named hook and returns a function that
// unregisters it. Any name may be used; unknown names define custom hooks
// fired via Dispatch.
func (h *Hooks) Register(name HookName, fn HookFunc) (unregister func()) {
	h.nextID++
	id := h.nextID
	h.handlers[name] = append(h.handlers[name], hookEntry{id: id, fn: fn})
	return func() {
		entries := h.handlers[name]
		for i, e := range entries {
			if e.id == id {
				h.handlers[name] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Dispatch fires the named hook on this section and its ancestors. The
// first non-nil callback return value short-circuits and is returned.
func (h *Hooks) Dispatch(name HookName, ctx *HookContext) any {
	return h.section.dispatch(name, ctx)
}

// fire runs the local handlers in registration order.
func (h *Hooks) fire(name HookName, ctx *HookContext) any {
	for _, e := range h.handlers[name] {
		if result := e.fn(ctx); result != nil {
			return result
		}
	}
	return nil
}

// dispatch bubbles a hook from this section up to the root.
func (s *Section) dispatch(name HookName, ctx *HookContext) any {
	if s.hooks != nil {
		if result := s.hooks.fire(name, ctx); result != nil {
			return result
		}
	}
	if s.parent != nil {
		return s.parent.dispatch(name, ctx)
	}
	return nil
}
