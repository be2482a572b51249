package game

import "sync"

// activeSetBuckets is the fixed number of hash buckets.
const activeSetBuckets = 64

// ActiveSet indexes the texts of the words currently falling.
// Insert is the only operation that may add a text, so two callers racing
// to add the same text always produce exactly one winner.
type ActiveSet struct {
	lock    sync.RWMutex
	buckets [activeSetBuckets][]string
	size    int
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{}
}

// hashText is the classic times-33 string hash seeded with 5381.
func hashText(text string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(text); i++ {
		h = h*33 + uint32(text[i])
	}
	return h % activeSetBuckets
}

// Insert adds text and reports true, or reports false if it was already present.
func (s *ActiveSet) Insert(text string) bool {
	b := hashText(text)

	s.lock.Lock()
	defer s.lock.Unlock()

	for _, t := range s.buckets[b] {
		if t == text {
			return false
		}
	}
	s.buckets[b] = append(s.buckets[b], text)
	s.size++
	return true
}

// Remove deletes text if present. Removing an absent text does nothing.
func (s *ActiveSet) Remove(text string) {
	b := hashText(text)

	s.lock.Lock()
	defer s.lock.Unlock()

	bucket := s.buckets[b]
	for i, t := range bucket {
		if t != text {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = ""
		s.buckets[b] = bucket[:last]
		s.size--
		return
	}
}

func (s *ActiveSet) Contains(text string) bool {
	b := hashText(text)

	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, t := range s.buckets[b] {
		if t == text {
			return true
		}
	}
	return false
}

func (s *ActiveSet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.size
}

func (s *ActiveSet) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for i := range s.buckets {
		s.buckets[i] = nil
	}
	s.size = 0
}
