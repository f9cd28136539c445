// Package aggregate holds the shared word index that file tasks fold into.
//
// The index is split into shards, each guarded by its own RWMutex, so tasks
// working on different words rarely contend. Creating an entry takes the
// shard write lock once; every later update of that word only touches the
// entry's own lock.
package aggregate

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 32

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// Index maps words to their Entry. It is safe for concurrent use by any number
// of goroutines. The zero value is not usable; call New.
type Index struct {
	shards     []*shard
	mask       uint64
	size       atomic.Int64
	generation atomic.Uint64
}

// New creates an empty index with the given number of shards. The count is
// rounded up to a power of two; values below 1 select DefaultShards.
func New(shards int) *Index {
	if shards < 1 {
		shards = DefaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}

	idx := &Index{
		shards: make([]*shard, n),
		mask:   uint64(n - 1),
	}
	for i := range idx.shards {
		idx.shards[i] = &shard{entries: make(map[string]*Entry)}
	}
	return idx
}

func (idx *Index) shardFor(word string) *shard {
	return idx.shards[xxhash.Sum64String(word)&idx.mask]
}

// Update records one occurrence of word in fileID, creating the entry on first
// sighting. Concurrent calls for the same word never lose an increment and never
// drop a file id.
func (idx *Index) Update(word, fileID string) {
	idx.getOrCreate(word).add(fileID)
}

func (idx *Index) getOrCreate(word string) *Entry {
	s := idx.shardFor(word)

	s.mu.RLock()
	e, ok := s.entries[word]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another task may have created it between the two locks
	if e, ok = s.entries[word]; ok {
		return e
	}
	e = newEntry()
	s.entries[word] = e
	idx.size.Add(1)
	return e
}

// Get returns the entry for word, if any.
func (idx *Index) Get(word string) (*Entry, bool) {
	s := idx.shardFor(word)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[word]
	return e, ok
}

// Len returns the number of distinct words.
func (idx *Index) Len() int {
	return int(idx.size.Load())
}

// Range calls fn for every word until fn returns false. Words added while
// Range runs may or may not be visited. fn must not call Update.
func (idx *Index) Range(fn func(word string, e *Entry) bool) {
	for _, s := range idx.shards {
		s.mu.RLock()
		for w, e := range s.entries {
			if !fn(w, e) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Snapshot returns a copy of every entry sorted by word. Each Stat is
// consistent on its own; the set as a whole is best-effort when updates are
// still in flight.
func (idx *Index) Snapshot() []Stat {
	type pair struct {
		word  string
		entry *Entry
	}
	pairs := make([]pair, 0, idx.Len())
	idx.Range(func(w string, e *Entry) bool {
		pairs = append(pairs, pair{w, e})
		return true
	})

	stats := make([]Stat, len(pairs))
	for i, p := range pairs {
		stats[i] = p.entry.Snapshot(p.word)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Word < stats[j].Word })
	return stats
}

// UnionFiles adds the file ids of word to dst and reports whether the word exists.
func (idx *Index) UnionFiles(word string, dst map[string]struct{}) bool {
	e, ok := idx.Get(word)
	if !ok {
		return false
	}
	e.appendFiles(dst)
	return true
}

// Generation returns a counter that changes whenever a batch starts or ends.
// Caches derived from the index key on it.
func (idx *Index) Generation() uint64 {
	return idx.generation.Load()
}

// Bump advances the generation.
func (idx *Index) Bump() {
	idx.generation.Add(1)
}
