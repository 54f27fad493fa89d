// Package dedup tracks identity keys already seen in a document or run.
package dedup

import (
	"sync"

	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
)

type key struct {
	name    string
	address string
}

// SeenSet is a set of truncated (name, address) identity keys. It is safe for
// concurrent use.
type SeenSet struct {
	mu   sync.Mutex
	keys map[key]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[key]struct{})}
}

// Add records the key and reports whether it was new.
func (s *SeenSet) Add(name, address string) bool {
	n, a := entity.IdentityKey(name, address)
	k := key{name: n, address: a}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Seen reports whether the key was added before.
func (s *SeenSet) Seen(name, address string) bool {
	n, a := entity.IdentityKey(name, address)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key{name: n, address: a}]
	return ok
}

// Len returns the number of distinct keys.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
