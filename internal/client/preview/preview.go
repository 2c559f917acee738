// Package preview keeps revocable local preview references for images that
// have been selected but not yet stored remotely.
package preview

import (
	"strings"
	"sync"

	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/google/uuid"
)

// Scheme prefixes every preview reference.
const Scheme = "blob:"

type entry struct {
	contentType string
	data        []byte
}

// Store maps preview references to image content.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Create registers the file and returns a new "blob:<uuid>" reference.
func (s *Store) Create(file models.ImageFile) string {
	ref := Scheme + uuid.NewString()
	s.mu.Lock()
	s.entries[ref] = entry{contentType: file.ContentType, data: file.Data}
	s.mu.Unlock()
	return ref
}

// Resolve returns the content behind a live reference.
func (s *Store) Resolve(ref string) (data []byte, contentType string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ref]
	return e.data, e.contentType, ok
}

// Revoke releases a reference. Unknown and non-preview references are ignored.
func (s *Store) Revoke(ref string) {
	if !IsPreview(ref) {
		return
	}
	s.mu.Lock()
	delete(s.entries, ref)
	s.mu.Unlock()
}

// Len reports the number of live references.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IsPreview reports whether ref is a local preview reference.
func IsPreview(ref string) bool {
	return strings.HasPrefix(ref, Scheme)
}
