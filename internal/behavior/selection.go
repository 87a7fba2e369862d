package behavior

import "github.com/san-kum/lexigraph/internal/render"

// Selection is an ordered set of visuals sharing one highlight. Membership
// changes invoke the highlight callback so tinting stays a side effect of
// the set, not a separate bookkeeping step.
type Selection struct {
	items     []*render.Visual
	member    map[*render.Visual]bool
	highlight func(v *render.Visual, selected bool)
}

func NewSelection() *Selection {
	return &Selection{member: make(map[*render.Visual]bool)}
}

// SetHighlight installs the membership side effect. Installing replays the
// current membership so a late-bound tinter starts consistent.
func (s *Selection) SetHighlight(fn func(v *render.Visual, selected bool)) {
	s.highlight = fn
	if fn != nil {
		for _, v := range s.items {
			fn(v, true)
		}
	}
}

func (s *Selection) Add(v *render.Visual) {
	if v == nil || s.member[v] {
		return
	}
	s.member[v] = true
	s.items = append(s.items, v)
	if s.highlight != nil {
		s.highlight(v, true)
	}
}

func (s *Selection) Remove(v *render.Visual) {
	if !s.member[v] {
		return
	}
	delete(s.member, v)
	for i, it := range s.items {
		if it == v {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	if s.highlight != nil {
		s.highlight(v, false)
	}
}

func (s *Selection) Clear() {
	items := s.items
	s.items = nil
	s.member = make(map[*render.Visual]bool)
	if s.highlight != nil {
		for _, v := range items {
			s.highlight(v, false)
		}
	}
}

func (s *Selection) Has(v *render.Visual) bool { return s.member[v] }
func (s *Selection) Len() int                  { return len(s.items) }

// Items returns the selection in insertion order. Callers must not mutate.
func (s *Selection) Items() []*render.Visual { return s.items }
