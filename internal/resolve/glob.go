package resolve

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// matchNames returns every task name in names that matches pattern,
// sorted for deterministic ordering (the caller's ordered-insertion set
// is what ultimately determines execution order, not this sort — it only
// keeps a single pattern's own matches reproducible).
func matchNames(pattern string, names map[string]struct{}) ([]string, error) {
	var out []string
	for n := range names {
		ok, err := doublestar.Match(pattern, n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

// orderedSet accumulates task names by first-inclusion order, supporting
// the composite filter semantics: includes append in match order, excludes
// remove previously accumulated names without disturbing the order of what
// remains.
type orderedSet struct {
	order []string
	index map[string]int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: map[string]int{}}
}

func (s *orderedSet) add(name string) {
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = len(s.order)
	s.order = append(s.order, name)
}

func (s *orderedSet) remove(name string) {
	idx, ok := s.index[name]
	if !ok {
		return
	}
	delete(s.index, name)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	for i := idx; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
}

func (s *orderedSet) names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
