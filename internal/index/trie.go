package index

import (
	"sort"
	"strings"

	"github.com/docvault/docvault/internal/document"
)

// Trie indexes one user's documents by normalized title for prefix search.
// Titles are lowercased and trimmed before indexing, keyed one child edge
// per Unicode codepoint. A terminal node owns a reference to exactly one
// document: inserting a second document whose title normalizes to the same
// string shadows the earlier one in the index (both stay in the store).
type Trie struct {
	root *node
}

type node struct {
	children map[rune]*node
	terminal bool
	doc      *document.Document
}

func newNode() *node {
	return &node{children: map[rune]*node{}}
}

func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// Normalize maps a title or prefix to its indexed form.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Insert indexes the document under its normalized title, overwriting any
// previous terminal occupant at that exact path. Empty titles index at the
// root itself.
func (t *Trie) Insert(d *document.Document) {
	n := t.root
	for _, r := range Normalize(d.Title) {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	n.terminal = true
	n.doc = d
}

// Search returns every document whose normalized title starts with the
// normalized prefix. An exhausted walk is a normal empty result. Traversal
// is depth-first with children visited in codepoint order, so the result
// order is deterministic for a fixed set of inserts.
func (t *Trie) Search(prefix string) []*document.Document {
	n := t.root
	for _, r := range Normalize(prefix) {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return collect(n, nil)
}

func collect(n *node, out []*document.Document) []*document.Document {
	if n.terminal {
		out = append(out, n.doc)
	}
	runes := make([]rune, 0, len(n.children))
	for r := range n.children {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	for _, r := range runes {
		out = collect(n.children[r], out)
	}
	return out
}

// Remove clears the terminal marker for the document's normalized title,
// matching by document identity: a terminal holding a different document id
// at the same path is left alone. Removing something never indexed is a
// no-op. Intermediate nodes are not pruned.
func (t *Trie) Remove(d *document.Document) {
	n := t.root
	for _, r := range Normalize(d.Title) {
		child, ok := n.children[r]
		if !ok {
			return
		}
		n = child
	}
	if !n.terminal || n.doc == nil || n.doc.ID != d.ID {
		return
	}
	n.terminal = false
	n.doc = nil
}
