package domain

import (
	"sort"
	"sync"
)

// CandidateSet maps a search name to the candidates it produced. Writers may
// run concurrently; Append inserts the key or extends its slice.
type CandidateSet struct {
	mu    sync.Mutex
	byKey map[string][]StoryCandidate
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byKey: make(map[string][]StoryCandidate)}
}

// Append records items under name. A name with zero items is still recorded so
// that failed searches show up as zero-result entries.
func (s *CandidateSet) Append(name string, items ...StoryCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[name] = append(s.byKey[name], items...)
}

// Names returns the recorded search names in sorted order.
func (s *CandidateSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.byKey))
	for name := range s.byKey {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a copy of the candidates stored under name.
func (s *CandidateSet) Get(name string) []StoryCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.byKey[name]
	out := make([]StoryCandidate, len(items))
	copy(out, items)
	return out
}

// Total counts candidates across all names.
func (s *CandidateSet) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, items := range s.byKey {
		total += len(items)
	}
	return total
}

// Counts returns the number of candidates per name.
func (s *CandidateSet) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, len(s.byKey))
	for name, items := range s.byKey {
		counts[name] = len(items)
	}
	return counts
}

// ByCategory groups every candidate by its source category, preserving the
// sorted-name order within each group.
func (s *CandidateSet) ByCategory() map[SourceCategory][]StoryCandidate {
	grouped := make(map[SourceCategory][]StoryCandidate)
	for _, name := range s.Names() {
		for _, c := range s.Get(name) {
			grouped[c.Category] = append(grouped[c.Category], c)
		}
	}
	return grouped
}
