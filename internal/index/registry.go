package index

import (
	"sync"

	"github.com/docvault/docvault/internal/document"
)

// userTrie pairs one user's trie with its lock. Searches on a user's trie
// run concurrently with each other; mutations are exclusive. Different
// users never block each other.
type userTrie struct {
	mu   sync.RWMutex
	trie *Trie
}

// Registry maps owner ids to their tries. Entries are created at
// rehydration, or lazily when a document arrives for an owner the registry
// has not seen (treated as an empty trie, not an error).
type Registry struct {
	mu    sync.RWMutex
	users map[string]*userTrie
}

func NewRegistry() *Registry {
	return &Registry{users: map[string]*userTrie{}}
}

func (r *Registry) user(ownerID string, create bool) *userTrie {
	r.mu.RLock()
	u := r.users[ownerID]
	r.mu.RUnlock()
	if u != nil || !create {
		return u
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u = r.users[ownerID]; u == nil {
		u = &userTrie{trie: NewTrie()}
		r.users[ownerID] = u
	}
	return u
}

// Insert indexes the document in its owner's trie.
func (r *Registry) Insert(ownerID string, d *document.Document) error {
	u := r.user(ownerID, true)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.trie.Insert(d)
	return nil
}

// Remove deindexes the document from its owner's trie. Unknown owners and
// unindexed documents are no-ops.
func (r *Registry) Remove(ownerID string, d *document.Document) error {
	u := r.user(ownerID, false)
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.trie.Remove(d)
	return nil
}

// Search answers a prefix query against the owner's trie. An unknown owner
// yields an empty result, indistinguishable from a user with no matches.
func (r *Registry) Search(ownerID, prefix string) []*document.Document {
	u := r.user(ownerID, false)
	if u == nil {
		return nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.trie.Search(prefix)
}

// Users returns the ids the registry currently tracks.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}
