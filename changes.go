package configmanager

// Change records one observed transition of an item's value. NotSet marks
// the absent states.
type Change struct {
	OldValue any
	NewValue any
	OldRaw   any
	NewRaw   any
}

// Changeset records value changes within a section's subtree for the time
// it is open. It listens on the item_value_changed hook; changes made
// through any API that fires it are captured, including nested sections.
//
// Changesets nest: each open changeset records independently.
type Changeset struct {
	section    *Section
	changes    map[*Item][]Change
	order      []*Item
	unregister func()
}

// BeginChanges opens a changeset on the section. Close it when done.
func (s *Section) BeginChanges() *Changeset {
	cs := &Changeset{
		section: s,
		changes: make(map[*Item][]Change),
	}
	cs.unregister = s.Hooks().Register(HookValueChanged, func(ctx *HookContext) any {
		if ctx.Item != nil {
			cs.record(ctx)
		}
		// Recording must never short-circuit dispatch: outer changesets and
		// user callbacks still get the event.
		return nil
	})
	return cs
}

// TrackChanges runs fn and returns the changeset of value changes it
// caused. The changeset is closed before returning, also on panic.
func (s *Section) TrackChanges(fn func()) *Changeset {
	cs := s.BeginChanges()
	defer cs.Close()
	fn()
	return cs
}

// Close stops recording. Safe to call more than once.
func (cs *Changeset) Close() {
	if cs.unregister != nil {
		cs.unregister()
		cs.unregister = nil
	}
}

func (cs *Changeset) record(ctx *HookContext) {
	if equalValues(ctx.OldValue, ctx.NewValue) && equalValues(ctx.OldRaw, ctx.NewRaw) {
		return
	}
	if _, seen := cs.changes[ctx.Item]; !seen {
		cs.order = append(cs.order, ctx.Item)
	}
	cs.changes[ctx.Item] = append(cs.changes[ctx.Item], Change{
		OldValue: ctx.OldValue,
		NewValue: ctx.NewValue,
		OldRaw:   ctx.OldRaw,
		NewRaw:   ctx.NewRaw,
	})
}

// Len returns the number of items with a recorded change.
func (cs *Changeset) Len() int { return len(cs.order) }

// Items returns the changed items in the order their first change was
// recorded.
func (cs *Changeset) Items() []*Item {
	out := make([]*Item, len(cs.order))
	copy(out, cs.order)
	return out
}

// Values returns the final value per changed item. Items whose value ended
// up where it started (a set later undone) are skipped.
func (cs *Changeset) Values() map[*Item]any {
	values := make(map[*Item]any)
	for item, change := range cs.netChanges() {
		values[item] = change.NewValue
	}
	return values
}

// Changes returns the net transition per changed item, collapsing each
// item's change list into first-old to last-new. Items that ended where
// they started are skipped.
func (cs *Changeset) Changes() map[*Item]Change {
	return cs.netChanges()
}

func (cs *Changeset) netChanges() map[*Item]Change {
	net := make(map[*Item]Change)
	for _, item := range cs.order {
		recorded := cs.changes[item]
		first, last := recorded[0], recorded[len(recorded)-1]
		if equalValues(first.OldValue, last.NewValue) && equalValues(first.OldRaw, last.NewRaw) {
			continue
		}
		net[item] = Change{
			OldValue: first.OldValue,
			NewValue: last.NewValue,
			OldRaw:   first.OldRaw,
			NewRaw:   last.NewRaw,
		}
	}
	return net
}

// Reset rolls the given items (all changed items when none are given) back
// to their state before the first recorded change. Rollback does not fire
// hooks, so it is invisible to other open changesets.
func (cs *Changeset) Reset(items ...*Item) {
	targets := items
	if len(targets) == 0 {
		targets = cs.order
	}
	for _, item := range targets {
		recorded, ok := cs.changes[item]
		if !ok {
			continue
		}
		first := recorded[0]
		item.restore(first.OldValue, first.OldRaw)
	}
}
