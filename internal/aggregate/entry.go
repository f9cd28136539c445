package aggregate

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Entry is the metadata kept for one word: how many times it occurred and in
// which files. An Entry is created once per word and then mutated in place by
// every task that sees the word. It is safe for concurrent use.
type Entry struct {
	mu    sync.Mutex
	files map[string]struct{}
	count atomic.Uint64
}

func newEntry() *Entry {
	return &Entry{files: make(map[string]struct{}, 1)}
}

// add records one occurrence of the word in fileID.
// The counter is bumped under the same lock that guards the file set so a
// Snapshot never observes one without the other.
func (e *Entry) add(fileID string) {
	e.mu.Lock()
	e.files[fileID] = struct{}{}
	e.count.Add(1)
	e.mu.Unlock()
}

// Count returns the total number of occurrences.
func (e *Entry) Count() uint64 {
	return e.count.Load()
}

// HasFile reports whether the word was seen in fileID.
func (e *Entry) HasFile(fileID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.files[fileID]
	return ok
}

// FileCount returns the number of distinct files containing the word.
func (e *Entry) FileCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.files)
}

// Files returns a sorted copy of the file ids.
func (e *Entry) Files() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.files)
}

// appendFiles adds the entry's file ids to dst under the entry lock.
func (e *Entry) appendFiles(dst map[string]struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.files {
		dst[id] = struct{}{}
	}
}

// Stat is a point-in-time copy of one entry.
type Stat struct {
	Word  string   `json:"word"`
	Count uint64   `json:"count"`
	Files []string `json:"files"`
}

// Snapshot copies the entry's count and files atomically with respect to
// concurrent updates of the same word.
func (e *Entry) Snapshot(word string) Stat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stat{
		Word:  word,
		Count: e.count.Load(),
		Files: sortedKeys(e.files),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
