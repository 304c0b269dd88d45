package history

// GroupScope closes an explicit group with defer.
// Usage:
//
//	func renameSymbol(s *history.Stack) {
//	    defer s.GroupScope("Rename Symbol").End()
//	    // ... multiple edits pushed ...
//	}
type GroupScope struct {
	stack  *Stack
	active bool
}

// GroupScope starts a new group scope. Call End() or use with defer to
// properly close the group.
func (s *Stack) GroupScope(name string) *GroupScope {
	s.BeginGroup(name)
	return &GroupScope{stack: s, active: true}
}

// End ends the group scope. Safe to call multiple times; only the first
// call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.stack.EndGroup()
		g.active = false
	}
}

// Cancel discards the group without recording it.
// Note: edits already applied still affect the document.
func (g *GroupScope) Cancel() {
	if g.active {
		g.stack.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn within a group. If fn returns an error the group is
// cancelled; otherwise it is ended normally.
func (s *Stack) Transaction(name string, fn func() error) error {
	s.BeginGroup(name)

	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}

	s.EndGroup()
	return nil
}
