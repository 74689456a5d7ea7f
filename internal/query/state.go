package query

// State owns the current Query. Every mutation replaces the whole value so
// a Snapshot never observes a half applied change.
type State struct {
	q Query
}

func NewState() *State {
	return &State{q: Default()}
}

// Snapshot returns a deep copy of the current query.
func (s *State) Snapshot() Query {
	return s.q.clone()
}

// Reset restores the defaults.
func (s *State) Reset() {
	s.q = Default()
}

// Replace installs q wholesale, clamping the page.
func (s *State) Replace(q Query) {
	q = q.clone()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = ColumnDate
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	s.q = q
}

// SetFilter replaces the filter and returns to page 1. A nil filter clears it.
func (s *State) SetFilter(f *Filter) {
	next := s.q
	if f != nil {
		cp := *f
		next.Filter = &cp
	} else {
		next.Filter = nil
	}
	next.Page = 1
	s.q = next
}

func (s *State) ClearFilter() {
	s.SetFilter(nil)
}

// SetSort toggles the order when col is already the sort column, otherwise
// sorts ascending by col. The page always returns to 1.
func (s *State) SetSort(col Column) {
	next := s.q
	if next.Sort == col {
		next.Order = next.Order.Toggle()
	} else {
		next.Sort = col
		next.Order = OrderAsc
	}
	next.Page = 1
	s.q = next
}

// SetPage moves to page n, clamped to 1.
func (s *State) SetPage(n int) {
	s.q.Page = max(1, n)
}

func (s *State) NextPage() {
	s.SetPage(s.q.Page + 1)
}

func (s *State) PrevPage() {
	s.SetPage(s.q.Page - 1)
}
