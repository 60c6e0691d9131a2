package smartreport

import "slices"

// idSet is a set of component ids.
type idSet map[string]struct{}

func (s idSet) add(id string)    { s[id] = struct{}{} }
func (s idSet) remove(id string) { delete(s, id) }
func (s idSet) reset()           { clear(s) }

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// inflight counts unfinished operations per id. An id stays marked until every
// operation started for it has finished.
type inflight map[string]int

func (f inflight) begin(id string) { f[id]++ }

func (f inflight) done(id string) {
	if f[id] <= 1 {
		delete(f, id)
		return
	}
	f[id]--
}

func (f inflight) has(id string) bool { return f[id] > 0 }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
