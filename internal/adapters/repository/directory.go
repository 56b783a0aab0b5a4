package repository

import "github.com/okian/podium/internal/domain/model"

// Directory maps a player identifier to its current entry. It answers
// existence and score lookups in O(1) and has no ordering semantics. It is not
// safe for concurrent use; the engine keeps it in lockstep with the RankIndex.
type Directory struct {
	byID map[string]model.Entry
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{byID: make(map[string]model.Entry)}
}

// Get returns the current entry for id.
func (d *Directory) Get(id string) (model.Entry, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// Put stores e under id, replacing any prior entry.
func (d *Directory) Put(id string, e model.Entry) {
	d.byID[id] = e
}

// Remove deletes id and reports whether it was present.
func (d *Directory) Remove(id string) bool {
	if _, ok := d.byID[id]; !ok {
		return false
	}
	delete(d.byID, id)
	return true
}

// Contains reports whether id has an entry.
func (d *Directory) Contains(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// Len returns the number of players.
func (d *Directory) Len() int { return len(d.byID) }

// Clear drops every row.
func (d *Directory) Clear() {
	clear(d.byID)
}
