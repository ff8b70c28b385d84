package transcript

import "sync"

// Cache is an explicit in-memory transcript cache keyed by media file path.
// It is owned by whoever constructs it and passed to callers that want to
// avoid re-transcribing the same file; there is no package-global instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Transcript
}

// NewCache creates an empty transcript cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*Transcript),
	}
}

// Get returns the cached transcript for a media path, if present
func (c *Cache) Get(path string) (*Transcript, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tr, ok := c.entries[path]
	return tr, ok
}

// Put stores a transcript for a media path, replacing any previous entry
func (c *Cache) Put(path string, tr *Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = tr
}

// Invalidate removes the cached transcript for a media path. Callers should
// invalidate after any edit that changes the media's timeline.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, path)
}

// Len returns the number of cached transcripts
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
